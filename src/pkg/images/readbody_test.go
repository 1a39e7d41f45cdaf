package images

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func httpResponse(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func TestReadBodyCapsErrorBodies(t *testing.T) {
	body := bytes.Repeat([]byte("e"), maxResponseSize+512)

	data, err := readBody(httpResponse(http.StatusInternalServerError, body), DefaultMaxDownloadSize)
	require.NoError(t, err)
	require.Len(t, data, maxResponseSize)

	data, err = readBody(httpResponse(http.StatusNotFound, body), 16)
	require.NoError(t, err)
	require.Len(t, data, 16)
}

func TestReadBodySuccessLimit(t *testing.T) {
	body := bytes.Repeat([]byte("i"), maxResponseSize+512)

	data, err := readBody(httpResponse(http.StatusOK, body), DefaultMaxDownloadSize)
	require.NoError(t, err)
	require.Len(t, data, len(body))

	_, err = readBody(httpResponse(http.StatusOK, body), maxResponseSize)
	require.ErrorIs(t, err, ErrTooLarge)

	data, err = readBody(httpResponse(http.StatusOK, body), 0)
	require.NoError(t, err)
	require.Nil(t, data)
}
