package images

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/q-controller/imgctl/src/pkg/images/cache"
)

// CachedClient serves downloads from a local cache. Image ids are content
// hashes, so cached bytes never go stale; a HEAD request confirms the image
// still exists before a cached copy is returned.
type CachedClient struct {
	ImageClient
	cache cache.Backend
}

var _ ImageClient = (*CachedClient)(nil)

func NewCachedClient(cli ImageClient, backend cache.Backend) *CachedClient {
	return &CachedClient{
		ImageClient: cli,
		cache:       backend,
	}
}

func (c *CachedClient) Download(ctx context.Context, id string) (*Image, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	if img, ok := c.fromCache(id); ok {
		// The server stays authoritative: a cached image that was deleted
		// elsewhere must not outlive it.
		info, err := c.ImageClient.Info(ctx, id)
		if err != nil {
			return nil, err
		}
		if !info.Exists {
			if rmErr := c.cache.Remove(id); rmErr != nil {
				slog.WarnContext(ctx, "Failed to evict cached image", "image_id", id, "error", rmErr)
			}
			return nil, &NotFoundError{ID: id}
		}

		slog.DebugContext(ctx, "Serving image from cache", "image_id", id)
		return img, nil
	}

	img, err := c.ImageClient.Download(ctx, id)
	if err != nil {
		return nil, err
	}

	if storeErr := c.cache.Store(id, img.ContentType, bytes.NewReader(img.Data)); storeErr != nil {
		slog.WarnContext(ctx, "Failed to cache image", "image_id", id, "error", storeErr)
	}
	return img, nil
}

func (c *CachedClient) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := c.ImageClient.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	if rmErr := c.cache.Remove(id); rmErr != nil {
		slog.WarnContext(ctx, "Failed to evict cached image", "image_id", id, "error", rmErr)
	}
	return removed, nil
}

func (c *CachedClient) fromCache(id string) (*Image, bool) {
	metadata, err := c.cache.GetMetadata(id)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			slog.Warn("Failed to read cache metadata", "image_id", id, "error", err)
		}
		return nil, false
	}

	reader, err := c.cache.Retrieve(id)
	if err != nil {
		slog.Warn("Failed to open cached image", "image_id", id, "error", err)
		return nil, false
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			slog.Warn("Failed to close cached image", "image_id", id, "error", closeErr)
		}
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Warn("Failed to read cached image", "image_id", id, "error", err)
		return nil, false
	}

	return &Image{ID: id, Data: data, ContentType: metadata.ContentType}, true
}
