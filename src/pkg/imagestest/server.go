// Package imagestest provides an in-memory image store for tests.
package imagestest

import (
	"net/http/httptest"
)

type Server struct {
	*httptest.Server
	*Handler
}

// NewServer starts a fake image store. Callers must call Close.
func NewServer(apiKey string) *Server {
	handler, routes := NewHandler(apiKey)
	return &Server{
		Server:  httptest.NewServer(routes),
		Handler: handler,
	}
}
