// Package whitelist restricts which upstream API hosts callers may direct
// the service at.
//
// Patterns are shell-style wildcards matched against the hostname only
// ("*.trusted.com", "api.example.net"). They come from a JSON file of the
// form {"allowed_domains": [...]} plus any extra patterns given at
// construction. The file is re-read whenever its modification time moves
// forward, so edits apply without a restart.
package whitelist

import (
	"encoding/json"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/routegraph/pkg/errors"
)

// DeniedMessage is the user-facing message of a rejected URL.
const DeniedMessage = "API URL not in allowed whitelist."

// Whitelist holds the allowed host patterns. It is safe for concurrent use.
type Whitelist struct {
	file   string
	extra  []string
	logger *log.Logger

	mu        sync.Mutex
	patterns  []string
	lastMtime time.Time
}

type fileFormat struct {
	AllowedDomains []string `json:"allowed_domains"`
}

// New creates a whitelist backed by file with additional fixed patterns.
// A missing file is not an error; it contributes no patterns. logger may be
// nil.
func New(file string, extra []string, logger *log.Logger) *Whitelist {
	if logger == nil {
		logger = log.Default()
	}
	w := &Whitelist{file: file, extra: clean(extra), logger: logger}
	w.reload()
	return w
}

// Patterns returns the current file patterns followed by the extra ones.
func (w *Whitelist) Patterns() []string {
	w.reload()
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.patterns)+len(w.extra))
	out = append(out, w.patterns...)
	return append(out, w.extra...)
}

// reload re-reads the file when it changed. Read or decode failures keep
// the previous patterns.
func (w *Whitelist) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == "" {
		return
	}
	info, err := os.Stat(w.file)
	if os.IsNotExist(err) {
		if len(w.extra) == 0 && len(w.patterns) == 0 && w.lastMtime.IsZero() {
			w.logger.Warn("whitelist file not found, defaulting to empty whitelist", "path", w.file)
		}
		w.patterns = nil
		w.lastMtime = time.Time{}
		return
	}
	if err != nil {
		w.logger.Error("failed to stat whitelist file", "path", w.file, "err", err)
		return
	}
	if !info.ModTime().After(w.lastMtime) {
		return
	}

	data, err := os.ReadFile(w.file)
	if err != nil {
		w.logger.Error("failed to load whitelist", "path", w.file, "err", err)
		return
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		w.logger.Error("failed to load whitelist", "path", w.file, "err", err)
		return
	}

	w.logger.Info("loaded whitelist", "path", w.file, "patterns", len(f.AllowedDomains))
	w.patterns = clean(f.AllowedDomains)
	w.lastMtime = info.ModTime()
}

// Allowed reports whether the hostname of rawURL matches any pattern. A
// missing scheme is treated as https; any scheme other than http or https is
// denied.
func (w *Whitelist) Allowed(rawURL string) bool {
	rawURL = withScheme(rawURL)
	if errors.ValidateURL(rawURL) != nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		w.logger.Warn("could not parse hostname", "url", rawURL, "err", err)
		return false
	}
	host := strings.ToLower(u.Hostname())

	for _, p := range w.Patterns() {
		if ok, err := path.Match(p, host); err == nil && ok {
			return true
		}
	}
	w.logger.Warn("URL denied by whitelist", "url", rawURL, "host", host)
	return false
}

// Validate returns an INVALID_INPUT error when rawURL is empty or uses a
// scheme other than http or https, and a FORBIDDEN error when its host is
// not allowed.
func (w *Whitelist) Validate(rawURL string) error {
	if err := errors.ValidateURL(withScheme(rawURL)); err != nil {
		return err
	}
	if !w.Allowed(rawURL) {
		return errors.New(errors.ErrCodeForbidden, DeniedMessage)
	}
	return nil
}

// withScheme trims rawURL and prefixes https:// when it names no scheme.
func withScheme(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL != "" && !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	return rawURL
}

// SplitPatterns parses a comma-separated pattern list.
func SplitPatterns(s string) []string {
	return clean(strings.Split(s, ","))
}

func clean(patterns []string) []string {
	var out []string
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
