package imagestest

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/zeebo/xxh3"
)

const maxUploadSize = 32 << 20

// Handler serves the image store REST surface from memory.
type Handler struct {
	apiKey string

	mu       sync.RWMutex
	images   map[string][]byte
	requests []Request
}

// Request records what the handler received, for assertions in tests.
type Request struct {
	Method string
	Path   string
	Header http.Header
}

// NewHandler returns the routed handler. An empty apiKey disables
// authentication on protected routes.
func NewHandler(apiKey string) (*Handler, http.Handler) {
	h := &Handler{
		apiKey: apiKey,
		images: map[string][]byte{},
	}

	r := chi.NewRouter()
	r.Use(h.record)
	r.Get("/health", h.Health)
	r.With(h.requireKey).Post("/images", h.Post)
	r.Get("/images/{imageId}", h.Get)
	r.Head("/images/{imageId}", h.Head)
	r.With(h.requireKey).Delete("/images/{imageId}", h.Delete)
	return h, r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "img-store",
	})
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	if err != nil {
		http.Error(w, "Failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "Empty image data", http.StatusBadRequest)
		return
	}

	id := contentID(data)

	h.mu.Lock()
	_, exists := h.images[id]
	if !exists {
		h.images[id] = data
	}
	h.mu.Unlock()

	if exists {
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": "exists"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "status": "uploaded", "size": len(data)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	data, ok := h.lookup(chi.URLParam(r, "imageId"))
	if !ok {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", detectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("Failed to write image", "error", err)
	}
}

func (h *Handler) Head(w http.ResponseWriter, r *http.Request) {
	data, ok := h.lookup(chi.URLParam(r, "imageId"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", detectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageId")

	h.mu.Lock()
	_, ok := h.images[imageID]
	delete(h.images, imageID)
	h.mu.Unlock()

	if !ok {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": imageID, "status": "deleted"})
}

// Put stores data directly and returns its id.
func (h *Handler) Put(data []byte) string {
	id := contentID(data)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.images[id] = append([]byte(nil), data...)
	return id
}

func (h *Handler) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.images)
}

func (h *Handler) Requests() []Request {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Request(nil), h.requests...)
}

func (h *Handler) LastRequest() (Request, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.requests) == 0 {
		return Request{}, false
	}
	return h.requests[len(h.requests)-1], true
}

func (h *Handler) lookup(imageID string) ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data, ok := h.images[imageID]
	return data, ok
}

func (h *Handler) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.requests = append(h.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
		})
		h.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			provided = extractAPIKey(r.Header.Get("Authorization"))
		}

		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.apiKey)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractAPIKey(header string) string {
	key := strings.TrimPrefix(header, "Bearer ")
	return strings.TrimSpace(key)
}

func contentID(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

func detectContentType(data []byte) string {
	mtype := mimetype.Detect(data)
	if strings.HasPrefix(mtype.String(), "image/") {
		return mtype.String()
	}
	return "application/octet-stream"
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}
