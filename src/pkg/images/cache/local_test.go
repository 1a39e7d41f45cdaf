package cache_test

import (
	"io"
	"strings"
	"testing"

	"github.com/q-controller/imgctl/src/pkg/images/cache"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *cache.LocalFilesystemBackend {
	t.Helper()

	backend, err := cache.NewLocalFilesystemBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = backend.Close()
	})
	return backend
}

func TestLocalFilesystemBackend(t *testing.T) {
	backend := newBackend(t)

	imageID := "0123456789abcdef"
	testData := "Hello, World! This is test image data."

	require.NoError(t, backend.Store(imageID, "image/png", strings.NewReader(testData)))

	exists, err := backend.Exists(imageID)
	require.NoError(t, err)
	require.True(t, exists, "image should exist after storing")

	reader, err := backend.Retrieve(imageID)
	require.NoError(t, err)
	retrieved, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.Equal(t, testData, string(retrieved))

	metadata, err := backend.GetMetadata(imageID)
	require.NoError(t, err)
	require.Equal(t, imageID, metadata.ImageID)
	require.Equal(t, "image/png", metadata.ContentType)
	require.Equal(t, int64(len(testData)), metadata.Size)
	require.False(t, metadata.StoredAt.IsZero())

	imageIDs, err := backend.List()
	require.NoError(t, err)
	require.Contains(t, imageIDs, imageID)

	require.NoError(t, backend.Remove(imageID))

	exists, err = backend.Exists(imageID)
	require.NoError(t, err)
	require.False(t, exists, "image should not exist after removal")
}

func TestRetrieveMissing(t *testing.T) {
	backend := newBackend(t)

	_, err := backend.Retrieve("missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	_, err = backend.GetMetadata("missing")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRemoveMissingIsNoop(t *testing.T) {
	backend := newBackend(t)

	require.NoError(t, backend.Remove("missing"))
}

func TestStoreOverwrites(t *testing.T) {
	backend := newBackend(t)

	require.NoError(t, backend.Store("id", "image/gif", strings.NewReader("first")))
	require.NoError(t, backend.Store("id", "image/gif", strings.NewReader("second")))

	reader, err := backend.Retrieve("id")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	imageIDs, err := backend.List()
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, imageIDs)
}
