// Package config loads routegraph settings.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults ([Defaults])
//  2. an optional TOML file
//  3. a .env file in the working directory (existing variables are kept)
//  4. the process environment
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Settings is the complete runtime configuration.
type Settings struct {
	// WhitelistFile is the JSON file with {"allowed_domains": [...]}.
	WhitelistFile string `toml:"whitelist_file"`
	// AllowedDomains are whitelist patterns in addition to the file's.
	AllowedDomains []string `toml:"allowed_domains"`
	// PublicAPIURL is the externally reachable /graph URL injected into the
	// loader script.
	PublicAPIURL string `toml:"public_api_url"`

	// APIURLs are the candidate upstream hosts used when a request does not
	// name one.
	APIURLs []string `toml:"api_urls"`
	// Token is the upstream bearer token for CLI builds.
	Token string `toml:"token"`

	Listen string `toml:"listen"`
	Debug  bool   `toml:"debug"`

	// CacheURL selects the response cache ("", "none", a directory,
	// file://..., redis://...).
	CacheURL string        `toml:"cache_url"`
	CacheTTL time.Duration `toml:"cache_ttl"`

	Timeout   time.Duration `toml:"timeout"`
	Retries   int           `toml:"retries"`
	RateLimit float64       `toml:"rate_limit"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		WhitelistFile: "allowed_domains.json",
		PublicAPIURL:  "http://localhost:8000/graph",
		Listen:        "0.0.0.0:8000",
		Timeout:       10 * time.Second,
		Retries:       2,
	}
}

// Environment variables read by [Load].
const (
	EnvWhitelistFile  = "WHITELIST_FILE"
	EnvAllowedDomains = "ALLOWED_DOMAINS_ENV"
	EnvPublicAPIURL   = "PUBLIC_API_URL"
	EnvAPIURL         = "API_URL"
	EnvToken          = "API_TOKEN"
	EnvListen         = "LISTEN_ADDR"
	EnvDebug          = "DEBUG"
	EnvCacheURL       = "CACHE_URL"
	EnvCacheTTL       = "CACHE_TTL"
	EnvTimeout        = "HTTP_TIMEOUT"
	EnvRetries        = "RETRIES"
	EnvRateLimit      = "RATE_LIMIT"
)

// Load builds Settings from defaults, the TOML file at path (skipped when
// path is empty), envFile (skipped when empty or missing) and the
// environment.
func Load(path, envFile string) (*Settings, error) {
	s := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("env file %s: %w", envFile, err)
		}
	}

	if err := s.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvWhitelistFile, &s.WhitelistFile)
	str(EnvPublicAPIURL, &s.PublicAPIURL)
	str(EnvToken, &s.Token)
	str(EnvListen, &s.Listen)
	str(EnvCacheURL, &s.CacheURL)

	if v, ok := lookup(EnvAllowedDomains); ok && v != "" {
		s.AllowedDomains = append(s.AllowedDomains, splitList(v)...)
	}
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		s.APIURLs = splitList(v)
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		s.Debug = ParseBool(v)
	}

	var err error
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" || err != nil {
			return
		}
		d, perr := time.ParseDuration(v)
		if perr != nil {
			err = fmt.Errorf("%s: %w", key, perr)
			return
		}
		*dst = d
	}
	dur(EnvCacheTTL, &s.CacheTTL)
	dur(EnvTimeout, &s.Timeout)

	if v, ok := lookup(EnvRetries); ok && v != "" && err == nil {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return fmt.Errorf("%s: %w", EnvRetries, perr)
		}
		s.Retries = n
	}
	if v, ok := lookup(EnvRateLimit); ok && v != "" && err == nil {
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, perr)
		}
		s.RateLimit = f
	}
	return err
}

// ParseBool accepts "true", "1" and "yes" in any case.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
