package images_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/q-controller/imgctl/src/pkg/imagestest"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestUploadFiles(t *testing.T) {
	srv := imagestest.NewServer(testKey)
	defer srv.Close()

	cli := newTestClient(t, srv, images.WithCredential(images.Bearer(testKey)))
	dir := t.TempDir()

	first := writeFile(t, dir, "first.png", testImage)
	second := writeFile(t, dir, "second.bin", []byte("second image"))
	missing := filepath.Join(dir, "missing.png")

	results := images.UploadFiles(context.Background(), cli, []string{first, missing, second})
	require.Len(t, results, 3)

	require.True(t, results[0].OK())
	require.Equal(t, first, results[0].Source)
	require.Equal(t, images.ContentID(testImage), results[0].ID)

	require.False(t, results[1].OK())
	require.ErrorIs(t, results[1].Err, os.ErrNotExist)

	require.True(t, results[2].OK())
	require.Equal(t, images.ContentID([]byte("second image")), results[2].ID)

	succeeded, failed := images.Summarize(results)
	require.Equal(t, 2, succeeded)
	require.Equal(t, 1, failed)
	require.Equal(t, 2, srv.Len())
}

func TestUploadFilesStopsOnCancel(t *testing.T) {
	srv := imagestest.NewServer(testKey)
	defer srv.Close()

	cli := newTestClient(t, srv, images.WithCredential(images.Bearer(testKey)))
	path := writeFile(t, t.TempDir(), "a.png", testImage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := images.UploadFiles(ctx, cli, []string{path, path})
	require.Len(t, results, 2)
	for _, result := range results {
		require.ErrorIs(t, result.Err, context.Canceled)
	}
	require.Empty(t, srv.Requests())
}

func TestDownloadToDir(t *testing.T) {
	srv := imagestest.NewServer(testKey)
	defer srv.Close()

	id := srv.Put(testImage)
	cli := newTestClient(t, srv)
	out := filepath.Join(t.TempDir(), "nested", "out")

	results, err := images.DownloadToDir(context.Background(), cli, []string{id, "nonexistent123"}, out)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.True(t, results[0].OK())
	require.Equal(t, filepath.Join(out, id+".png"), results[0].Path)
	written, err := os.ReadFile(results[0].Path)
	require.NoError(t, err)
	require.Equal(t, testImage, written)

	require.True(t, images.IsNotFound(results[1].Err))
	require.Empty(t, results[1].Path)
}

func TestSummarizeEmpty(t *testing.T) {
	succeeded, failed := images.Summarize(nil)
	require.Zero(t, succeeded)
	require.Zero(t, failed)
}
