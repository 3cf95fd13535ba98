package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateDomain validates a PBX domain name before it is interpolated into
// upstream request paths.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 253 characters
func ValidateDomain(domain string) error {
	if domain == "" {
		return New(ErrCodeInvalidDomain, "domain cannot be empty")
	}

	if len(domain) > 253 {
		return New(ErrCodeInvalidDomain, "domain too long (max 253 characters)")
	}

	for _, r := range domain {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDomain, "domain contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",
		"/",
		"\\",
		"?",
		"#",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(domain, pattern) {
			return New(ErrCodeInvalidDomain, "domain contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// formatRegex matches the output formats accepted by the CLI.
var formatRegex = regexp.MustCompile(`^(json|dot|svg)$`)

// ValidateFormat validates an output format name.
func ValidateFormat(format string) error {
	if !formatRegex.MatchString(format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (use json, dot or svg)", format)
	}
	return nil
}
