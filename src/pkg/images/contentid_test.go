package images

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

func TestContentID(t *testing.T) {
	id := ContentID([]byte("image"))
	require.Len(t, id, 16)
	require.Equal(t, id, ContentID([]byte("image")))
	require.NotEqual(t, id, ContentID([]byte("image2")))
}

func TestDetectContentType(t *testing.T) {
	require.Equal(t, "image/png", DetectContentType(pngHeader))
	require.Equal(t, "image/jpeg", DetectContentType(jpegHeader))
	require.Equal(t, "application/octet-stream", DetectContentType([]byte{0x00, 0x01, 0x02, 0x03}))
}

func TestExtensionFor(t *testing.T) {
	require.Equal(t, ".png", ExtensionFor("image/png"))
	require.Equal(t, ".jpg", ExtensionFor("image/jpeg"))
	require.Equal(t, ".gif", ExtensionFor("image/gif; charset=binary"))
	require.Equal(t, fallbackExtension, ExtensionFor("application/octet-stream"))
	require.Equal(t, fallbackExtension, ExtensionFor(""))
}

func TestFileName(t *testing.T) {
	require.Equal(t, "abc.png", FileName("abc", "image/png"))
	require.Equal(t, "a_b.jpg", FileName("a/b", "image/jpeg"))
	require.Equal(t, "_.jpg", FileName("..", ""))
}
