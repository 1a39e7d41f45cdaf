package images

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidID  = errors.New("images: image id must not be empty")
	ErrEmptyImage = errors.New("images: image data must not be empty")
	ErrTooLarge   = errors.New("images: response body exceeds size limit")
	ErrIDMismatch = errors.New("images: server id does not match content hash")
)

// TransportError reports a request that never produced an HTTP response.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("images: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports a 401 or 403 on a protected call.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("images: %s (%d): %s", statusText(e.Status), e.Status, e.Body)
}

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("images: image not found: %s", e.ID)
}

// ServerError carries any other non-2xx status with the raw body.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("images: server returned %d %s: %s", e.Status, statusText(e.Status), e.Body)
}

func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

func IsAuth(err error) bool {
	var auth *AuthError
	return errors.As(err, &auth)
}

func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "status"
}
