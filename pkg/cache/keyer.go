package cache

import "strings"

// Keyer generates cache keys for upstream responses.
type Keyer interface {
	// ResponseKey returns the key for the response to a GET of path with
	// the given encoded query.
	ResponseKey(path, query string) string
}

// DefaultKeyer produces unscoped "resp:" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResponseKey implements Keyer.
func (DefaultKeyer) ResponseKey(path, query string) string {
	if query == "" {
		return "resp:" + path
	}
	return "resp:" + path + "?" + query
}

// ScopedKeyer prefixes every key so that responses fetched with different
// credentials never share entries.
//
//	keyer := cache.NewScopedKeyer(nil, cache.Scope(baseURL, token))
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResponseKey implements Keyer.
func (k *ScopedKeyer) ResponseKey(path, query string) string {
	return k.prefix + k.inner.ResponseKey(path, query)
}

// Scope derives a key prefix from the API base URL and bearer token. The
// token itself never appears in a key.
func Scope(baseURL, token string) string {
	h := Hash([]byte(strings.TrimRight(baseURL, "/") + "\x00" + token))
	return "pbx:" + h[:16] + ":"
}
