package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/q-controller/imgctl/src/pkg/utils"
)

const (
	DefaultBaseURL         = "http://localhost:8080"
	DefaultTimeout         = 30 * time.Second
	DefaultMaxDownloadSize = 64 << 20

	maxResponseSize = 1 << 20
	healthPath      = "/health"
	imagesPath      = "/images"
	requestIDHeader = "X-Request-ID"
	userAgent       = "imgctl/1"
)

// Client talks to the image store over HTTP. It holds only immutable
// configuration and is safe for concurrent use.
type Client struct {
	baseURL         string
	credential      Credential
	httpClient      *http.Client
	timeout         time.Duration
	maxDownloadSize int64
	verifyIDs       bool
	progress        func(sent, total int64)
	logger          *slog.Logger
}

var _ ImageClient = (*Client)(nil)

type Option func(*Client)

// WithCredential sets the credential sent on protected operations.
func WithCredential(credential Credential) Option {
	return func(c *Client) {
		c.credential = credential
	}
}

// WithHTTPClient sets the HTTP client used to issue requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client == nil {
			return
		}
		c.httpClient = client
	}
}

// WithTimeout bounds every request. Zero disables the per-request deadline;
// the caller's context still applies.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout < 0 {
			return
		}
		c.timeout = timeout
	}
}

// WithMaxDownloadSize caps the number of bytes buffered for a download.
func WithMaxDownloadSize(n int64) Option {
	return func(c *Client) {
		if n <= 0 {
			return
		}
		c.maxDownloadSize = n
	}
}

// WithVerifyIDs makes Upload check the returned id against ContentID.
func WithVerifyIDs(verify bool) Option {
	return func(c *Client) {
		c.verifyIDs = verify
	}
}

// WithProgress registers fn to be called as upload bytes are sent. Progress is
// logged at debug level whether or not fn is set.
func WithProgress(fn func(sent, total int64)) Option {
	return func(c *Client) {
		c.progress = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger == nil {
			return
		}
		c.logger = logger
	}
}

// New creates a client for the image store at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("images: invalid base url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("images: base url %q must use http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("images: base url %q has no host", baseURL)
	}

	client := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      &http.Client{},
		timeout:         DefaultTimeout,
		maxDownloadSize: DefaultMaxDownloadSize,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(client)
	}

	return client, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckHealth queries the public health endpoint.
func (c *Client) CheckHealth(ctx context.Context) (*Health, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+healthPath, nil, nil, maxResponseSize)
	if err != nil {
		return nil, err
	}
	return parseHealth(resp)
}

// Upload stores data and returns the id assigned by the server.
func (c *Client) Upload(ctx context.Context, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+imagesPath, data, c.credential, maxResponseSize)
	if err != nil {
		return nil, err
	}

	result, err := parseUpload(resp)
	if err != nil {
		return nil, err
	}

	if c.verifyIDs {
		if want := ContentID(data); result.ID != want {
			return nil, fmt.Errorf("%w: got %s, want %s", ErrIDMismatch, result.ID, want)
		}
	}

	c.logger.DebugContext(ctx, "Image uploaded", "image_id", result.ID, "status", result.Status, "size", len(data))
	return result, nil
}

// Download fetches the image bytes and their content type.
func (c *Client) Download(ctx context.Context, id string) (*Image, error) {
	imageURL, err := c.ImageURL(id)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, imageURL, nil, nil, c.maxDownloadSize)
	if err != nil {
		return nil, err
	}
	return parseDownload(id, resp)
}

// Info reports whether the image exists, without transferring its body.
func (c *Client) Info(ctx context.Context, id string) (*ImageInfo, error) {
	imageURL, err := c.ImageURL(id)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodHead, imageURL, nil, nil, 0)
	if err != nil {
		return nil, err
	}
	return parseInfo(id, resp)
}

func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	info, err := c.Info(ctx, id)
	if err != nil {
		return false, err
	}
	return info.Exists, nil
}

// Delete removes the image. It returns false without error when the image
// did not exist.
func (c *Client) Delete(ctx context.Context, id string) (bool, error) {
	imageURL, err := c.ImageURL(id)
	if err != nil {
		return false, err
	}

	resp, err := c.do(ctx, http.MethodDelete, imageURL, nil, c.credential, maxResponseSize)
	if err != nil {
		return false, err
	}
	return parseDelete(resp)
}

// ImageURL returns the public URL of the image with the given id.
func (c *Client) ImageURL(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", ErrInvalidID
	}

	segment, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return "", fmt.Errorf("images: encode image id %q: %w", id, err)
	}
	return c.baseURL + imagesPath + "/" + segment, nil
}

func (c *Client) do(ctx context.Context, method, target string, body []byte, credential Credential, limit int64) (result *response, retErr error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		progress := utils.NewProgress("Upload progress", int64(len(body)), c.progress)
		reader = progress.Reader(bytes.NewReader(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("images: build %s request: %w", method, err)
	}
	if body != nil {
		req.ContentLength = int64(len(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}

	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", DetectContentType(body))
	}
	if credential != nil {
		credential.apply(req.Header)
	}

	started := time.Now()
	c.logger.DebugContext(ctx, "Sending request", "method", method, "url", target, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method, URL: target, Err: err}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			if retErr == nil {
				// Return close error if no other error
				retErr = &TransportError{Op: method, URL: target, Err: closeErr}
			} else {
				retErr = errors.Join(retErr, closeErr)
			}
		}
	}()

	data, err := readBody(resp, limit)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, &TransportError{Op: method, URL: target, Err: err}
	}

	c.logger.DebugContext(ctx, "Received response",
		"method", method,
		"url", target,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	return &response{
		Status:        resp.StatusCode,
		Header:        resp.Header,
		ContentLength: resp.ContentLength,
		Body:          data,
	}, nil
}

// readBody buffers at most limit bytes. An oversized success body fails with
// ErrTooLarge; an error body is truncated to min(limit, maxResponseSize).
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, nil
	}
	if !isSuccess(resp.StatusCode) {
		limit = min(limit, maxResponseSize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > limit {
		if isSuccess(resp.StatusCode) {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
		}
		data = data[:limit]
	}
	return data, nil
}
