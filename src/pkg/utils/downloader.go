package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

var fetchGroup singleflight.Group

// FetchTimeout bounds a single remote fetch, however many callers share it.
var FetchTimeout = 2 * time.Minute

// Fetched is the body of a remote resource. Concurrent callers fetching the
// same URL share one value; Data must not be modified.
type Fetched struct {
	URL         string
	Data        []byte
	ContentType string
}

// FetchURL downloads rawURL into memory, failing if the body exceeds limit
// bytes. Concurrent fetches of the same URL are collapsed into one request.
func FetchURL(ctx context.Context, client *http.Client, rawURL string, limit int64) (*Fetched, error) {
	if !IsHTTP(rawURL) {
		return nil, fmt.Errorf("unsupported url %q: only http and https are allowed", rawURL)
	}
	if client == nil {
		client = http.DefaultClient
	}

	// The shared fetch outlives any single caller: it runs detached from the
	// first caller's cancellation and is bounded by FetchTimeout instead.
	results := fetchGroup.DoChan(rawURL, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FetchTimeout)
		defer cancel()
		return fetch(fetchCtx, client, rawURL, limit)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Shared {
			slog.Debug("Reused in-flight fetch", "url", rawURL)
		}
		return result.Val.(*Fetched), nil
	}
}

func fetch(ctx context.Context, client *http.Client, rawURL string, limit int64) (fetched *Fetched, retErr error) {
	slog.Info("Starting file download", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			if retErr == nil {
				// Return close error if no other error
				retErr = closeErr
			} else {
				retErr = errors.Join(retErr, closeErr)
			}
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}
	if limit > 0 && resp.ContentLength > limit {
		return nil, fmt.Errorf("remote file is %d bytes, limit is %d", resp.ContentLength, limit)
	}

	var body bytes.Buffer
	reader := io.Reader(resp.Body)
	if limit > 0 {
		reader = io.LimitReader(resp.Body, limit+1)
	}

	progress := NewProgress("Download progress", resp.ContentLength, nil)
	if _, err := io.Copy(io.MultiWriter(&body, progress), reader); err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}
	if limit > 0 && int64(body.Len()) > limit {
		return nil, fmt.Errorf("remote file exceeds limit of %d bytes", limit)
	}

	slog.Info("File downloaded successfully", "url", rawURL, "bytes", body.Len())
	return &Fetched{
		URL:         rawURL,
		Data:        body.Bytes(),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
