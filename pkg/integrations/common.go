package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	httpTimeout = 10 * time.Second

	// APIPathSuffix is the versioned API root every base URL ends with.
	APIPathSuffix = "/ns-api/v2"

	// DefaultPageSize is the "limit" sent with paginated requests.
	DefaultPageSize = 1000

	// DefaultMaxItems caps the total number of items a paginated listing may
	// return before it fails with RESOURCE_LIMIT_EXCEEDED.
	DefaultMaxItems = 10000

	// DefaultRetries is the number of full failover passes per request.
	DefaultRetries = 2
)

var (
	// ErrNotFound is returned when the upstream answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures (timeouts, refused
	// connections) and 5xx responses from a single host.
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the given per-request timeout.
// A non-positive timeout uses the 10s default.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = httpTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NormalizeBaseURL converts a user-supplied API host into a canonical base
// URL: whitespace and trailing slashes are trimmed, "https://" is added when
// no http scheme is present, and the versioned API suffix is appended when
// missing. An empty input returns "".
//
//	pbx.example.com            -> https://pbx.example.com/ns-api/v2
//	http://10.0.0.5:8080/      -> http://10.0.0.5:8080/ns-api/v2
func NormalizeBaseURL(raw string) string {
	s := strings.TrimRight(strings.TrimSpace(raw), "/")
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "http") {
		s = "https://" + s
	}
	if !strings.HasSuffix(s, APIPathSuffix) {
		s += APIPathSuffix
	}
	return s
}

var digitSegment = regexp.MustCompile(`/[0-9]+`)

// StatPath collapses numeric path segments so that call statistics group by
// endpoint rather than by user or queue id.
//
//	/domains/acme/users/101/answerrules -> /domains/acme/users/{id}/answerrules
func StatPath(path string) string {
	return digitSegment.ReplaceAllString(path, "/{id}")
}

// PathEscape percent-encodes a single path segment.
// This is a convenience wrapper around [url.PathEscape].
func PathEscape(s string) string { return url.PathEscape(s) }
