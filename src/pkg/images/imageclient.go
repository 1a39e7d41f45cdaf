package images

import (
	"context"
)

// ImageClient is the set of operations exposed by the image store.
type ImageClient interface {
	CheckHealth(ctx context.Context) (*Health, error)
	Upload(ctx context.Context, data []byte) (*UploadResult, error)
	Download(ctx context.Context, id string) (*Image, error)
	Info(ctx context.Context, id string) (*ImageInfo, error)
	Delete(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	ImageURL(id string) (string, error)
}

const (
	UploadStatusUploaded = "uploaded"
	UploadStatusExists   = "exists"
)

// Health is the payload returned by the health endpoint. Fields holds the
// full decoded object, including keys not mapped onto the struct.
type Health struct {
	Status  string         `json:"status"`
	Service string         `json:"service"`
	Fields  map[string]any `json:"-"`
}

func (h *Health) Healthy() bool {
	return h != nil && (h.Status == "healthy" || h.Status == "ok")
}

type UploadResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Size   int64  `json:"size,omitempty"`
}

// Created reports whether the upload stored new content rather than
// matching an image that was already present.
func (r *UploadResult) Created() bool {
	return r != nil && r.Status != UploadStatusExists
}

type Image struct {
	ID          string
	Data        []byte
	ContentType string
}

// ImageInfo is derived from response headers only. ContentLength is -1 when
// the server did not report it.
type ImageInfo struct {
	ID            string
	Exists        bool
	ContentType   string
	ContentLength int64
}
