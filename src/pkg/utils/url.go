package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// IsHTTP reports whether rawURL is an absolute http or https URL.
func IsHTTP(rawURL string) bool {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") && parsedURL.Host != ""
}

// Hash returns the hex SHA-256 of s. It is used to derive file names from
// arbitrary ids.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
