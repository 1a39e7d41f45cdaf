package images

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const defaultContentType = "application/octet-stream"

// response is the transport-independent view of an HTTP response that the
// parse functions below operate on.
type response struct {
	Status        int
	Header        http.Header
	ContentLength int64
	Body          []byte
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// statusError maps a non-2xx status that has no operation-specific meaning.
func statusError(resp *response) error {
	body := errorBody(resp)
	switch resp.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Status: resp.Status, Body: body}
	default:
		return &ServerError{Status: resp.Status, Body: body}
	}
}

func errorBody(resp *response) string {
	text := strings.TrimSpace(string(resp.Body))
	if text == "" {
		text = http.StatusText(resp.Status)
	}
	return text
}

func parseHealth(resp *response) (*Health, error) {
	if !isSuccess(resp.Status) {
		return nil, statusError(resp)
	}

	var health Health
	if err := json.Unmarshal(resp.Body, &health); err != nil {
		return nil, fmt.Errorf("images: decode health response: %w", err)
	}
	if err := json.Unmarshal(resp.Body, &health.Fields); err != nil {
		return nil, fmt.Errorf("images: decode health response: %w", err)
	}

	return &health, nil
}

func parseUpload(resp *response) (*UploadResult, error) {
	if !isSuccess(resp.Status) {
		return nil, statusError(resp)
	}

	var result UploadResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("images: decode upload response: %w", err)
	}

	result.ID = strings.TrimSpace(result.ID)
	if result.ID == "" {
		return nil, fmt.Errorf("images: upload response did not include an id: %s", errorBody(resp))
	}
	if result.Status == "" {
		if resp.Status == http.StatusCreated {
			result.Status = UploadStatusUploaded
		} else {
			result.Status = UploadStatusExists
		}
	}

	return &result, nil
}

func parseDownload(id string, resp *response) (*Image, error) {
	if resp.Status == http.StatusNotFound {
		return nil, &NotFoundError{ID: id}
	}
	if !isSuccess(resp.Status) {
		return nil, statusError(resp)
	}

	return &Image{
		ID:          id,
		Data:        resp.Body,
		ContentType: contentType(resp.Header),
	}, nil
}

// parseInfo treats 404 as a valid answer: the image does not exist.
func parseInfo(id string, resp *response) (*ImageInfo, error) {
	if resp.Status == http.StatusNotFound {
		return &ImageInfo{ID: id, Exists: false, ContentLength: -1}, nil
	}
	if !isSuccess(resp.Status) {
		return nil, statusError(resp)
	}

	return &ImageInfo{
		ID:            id,
		Exists:        true,
		ContentType:   contentType(resp.Header),
		ContentLength: contentLength(resp),
	}, nil
}

// parseDelete reports whether the image was removed by this call. A 404 means
// there was nothing to remove and is not an error.
func parseDelete(resp *response) (bool, error) {
	if resp.Status == http.StatusNotFound {
		return false, nil
	}
	if !isSuccess(resp.Status) {
		return false, statusError(resp)
	}
	return true, nil
}

func contentType(h http.Header) string {
	if value := strings.TrimSpace(h.Get("Content-Type")); value != "" {
		return value
	}
	return defaultContentType
}

func contentLength(resp *response) int64 {
	if resp.ContentLength >= 0 {
		return resp.ContentLength
	}

	n, err := strconv.ParseInt(strings.TrimSpace(resp.Header.Get("Content-Length")), 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
