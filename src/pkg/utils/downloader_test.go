package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchURL(t *testing.T) {
	payload := []byte("\x89PNG\r\n\x1a\nremote image")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/a.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	fetched, err := FetchURL(context.Background(), srv.Client(), srv.URL+"/a.png", 1024)
	require.NoError(t, err)
	require.Equal(t, payload, fetched.Data)
	require.Equal(t, "image/png", fetched.ContentType)
	require.Equal(t, srv.URL+"/a.png", fetched.URL)

	_, err = FetchURL(context.Background(), srv.Client(), srv.URL+"/missing.png", 1024)
	require.ErrorContains(t, err, "unexpected status code: 404")
}

func TestFetchURLLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	_, err := FetchURL(context.Background(), srv.Client(), srv.URL+"/big", 1024)
	require.Error(t, err)
}

func TestFetchURLRejectsNonHTTP(t *testing.T) {
	_, err := FetchURL(context.Background(), nil, "file:///etc/passwd", 0)
	require.ErrorContains(t, err, "unsupported url")
}

func TestFetchURLSharedFetchSurvivesCallerCancel(t *testing.T) {
	payload := []byte("GIF89a shared")
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		_, _ = w.Write(payload)
	}))
	defer srv.Close()
	var releaseOnce sync.Once
	releaseAll := func() { releaseOnce.Do(func() { close(release) }) }
	defer releaseAll()

	rawURL := srv.URL + "/shared.gif"
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := FetchURL(firstCtx, srv.Client(), rawURL, 1024)
		firstErr <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("fetch never reached the server")
	}

	type outcome struct {
		fetched *Fetched
		err     error
	}
	second := make(chan outcome, 1)
	go func() {
		fetched, err := FetchURL(context.Background(), srv.Client(), rawURL, 1024)
		second <- outcome{fetched, err}
	}()
	// Give the second caller time to join the in-flight fetch.
	time.Sleep(100 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	releaseAll()
	select {
	case got := <-second:
		require.NoError(t, got.err)
		require.Equal(t, payload, got.fetched.Data)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not get the shared result")
	}
	require.EqualValues(t, 1, hits.Load())
}
