package utils

import (
	"fmt"
	"io"
	"log/slog"
)

// Progress counts bytes moving through a transfer, logs them at debug level
// and forwards them to an optional callback. It is not safe for concurrent
// use; a transfer reads or writes from one goroutine.
type Progress struct {
	message string
	total   int64
	done    int64
	report  func(done, total int64)
}

// NewProgress tracks a transfer of total bytes (-1 if unknown), logging each
// step under message.
func NewProgress(message string, total int64, report func(done, total int64)) *Progress {
	return &Progress{message: message, total: total, report: report}
}

func (p *Progress) Write(b []byte) (int, error) {
	n := len(b)
	p.done += int64(n)
	if p.total > 0 {
		slog.Debug(p.message, "progress", fmt.Sprintf("%.2f%%", float64(p.done)/float64(p.total)*100))
	} else {
		slog.Debug(p.message, "bytes", p.done)
	}
	if p.report != nil {
		p.report(p.done, p.total)
	}
	return n, nil
}

// Reader returns r with every byte read counted.
func (p *Progress) Reader(r io.Reader) io.Reader {
	return io.TeeReader(r, p)
}
