package utils

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressReaderReportsEveryByte(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 10_000)

	var steps []int64
	progress := NewProgress("Upload progress", int64(len(payload)), func(done, total int64) {
		require.EqualValues(t, len(payload), total)
		steps = append(steps, done)
	})

	data, err := io.ReadAll(progress.Reader(bytes.NewReader(payload)))
	require.NoError(t, err)
	require.Equal(t, payload, data)

	require.NotEmpty(t, steps)
	require.EqualValues(t, len(payload), steps[len(steps)-1])
	require.IsIncreasing(t, steps)
}

func TestProgressUnknownTotal(t *testing.T) {
	progress := NewProgress("Download progress", -1, nil)

	n, err := progress.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.EqualValues(t, 3, progress.done)
}
