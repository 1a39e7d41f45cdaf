package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsHTTP(t *testing.T) {
	require.True(t, IsHTTP("http://localhost:8080/images/abc"))
	require.True(t, IsHTTP("https://example.com/a.png"))
	require.False(t, IsHTTP("ftp://example.com/a.png"))
	require.False(t, IsHTTP("/tmp/a.png"))
	require.False(t, IsHTTP("http://"))
	require.False(t, IsHTTP("://bad"))
}

func TestHash(t *testing.T) {
	// sha256("abc")
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Hash("abc"))
	require.NotEqual(t, Hash("a"), Hash("b"))
}
