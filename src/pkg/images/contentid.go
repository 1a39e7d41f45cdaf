package images

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/zeebo/xxh3"
)

const fallbackExtension = ".jpg"

// ContentID returns the id the image store assigns to data: the XXH3-64
// digest rendered as 16 lowercase hex digits.
func ContentID(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// DetectContentType sniffs the MIME type of data from its leading bytes.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// ExtensionFor returns a file extension for contentType, including the dot.
func ExtensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}

	if m := mimetype.Lookup(mediaType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return fallbackExtension
}
