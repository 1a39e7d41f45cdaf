package images

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	SchemeBearer = "bearer"
	SchemeAPIKey = "api-key"

	authorizationHeader = "Authorization"
	apiKeyHeader        = "X-API-Key"
)

// Credential authenticates protected requests. The set of implementations is
// closed: Bearer and APIKey. A nil Credential sends no authentication header.
type Credential interface {
	Scheme() string
	apply(h http.Header)
}

// Bearer sends the secret as "Authorization: Bearer <secret>".
type Bearer string

func (b Bearer) Scheme() string { return SchemeBearer }

func (b Bearer) String() string { return "Bearer(redacted)" }

func (b Bearer) apply(h http.Header) {
	h.Del(apiKeyHeader)
	h.Set(authorizationHeader, "Bearer "+string(b))
}

// APIKey sends the secret as "X-API-Key: <secret>".
type APIKey string

func (k APIKey) Scheme() string { return SchemeAPIKey }

func (k APIKey) String() string { return "APIKey(redacted)" }

func (k APIKey) apply(h http.Header) {
	h.Del(authorizationHeader)
	h.Set(apiKeyHeader, string(k))
}

// NewCredential builds the credential for scheme. An empty secret yields a nil
// Credential so that protected calls are sent unauthenticated.
func NewCredential(scheme, secret string) (Credential, error) {
	secret = strings.TrimSpace(secret)
	scheme = strings.ToLower(strings.TrimSpace(scheme))

	switch scheme {
	case "", SchemeBearer:
		if secret == "" {
			return nil, nil
		}
		return Bearer(secret), nil
	case SchemeAPIKey, "apikey", "x-api-key":
		if secret == "" {
			return nil, nil
		}
		return APIKey(secret), nil
	default:
		return nil, fmt.Errorf("images: unknown auth scheme %q (want %q or %q)", scheme, SchemeBearer, SchemeAPIKey)
	}
}
