package cache

import (
	"errors"
	"io"
	"time"
)

var ErrNotFound = errors.New("cache: image not found")

// Backend stores downloaded image content keyed by image id.
type Backend interface {
	Store(imageID, contentType string, data io.Reader) error
	Retrieve(imageID string) (io.ReadCloser, error)
	Remove(imageID string) error
	Exists(imageID string) (bool, error)
	GetMetadata(imageID string) (*Metadata, error)
	List() ([]string, error)
}

type Metadata struct {
	ImageID     string    `json:"image_id"`
	Hash        string    `json:"hash"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoredAt    time.Time `json:"stored_at"`
}
