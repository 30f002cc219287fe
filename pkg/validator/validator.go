package validator

import (
	"errors"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrURLTooLong is returned for URLs above the configured length
	ErrURLTooLong = errors.New("URL is too long")
	// ErrInvalidURL is returned for URLs that cannot name a web page
	ErrInvalidURL = errors.New("URL is not a valid web address")
)

// schemePrefix matches a leading URL scheme; "://" later in a query
// string does not count
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// HasScheme reports whether rawURL starts with a scheme
func HasScheme(rawURL string) bool {
	return schemePrefix.MatchString(rawURL)
}

// WithScheme prefixes https:// when rawURL carries no scheme of its own
func WithScheme(rawURL string) string {
	if HasScheme(rawURL) {
		return rawURL
	}
	return "https://" + rawURL
}

// ValidateURL checks a user-supplied post URL. A missing scheme is
// accepted; any scheme other than http(s) is not.
func ValidateURL(rawURL string, maxLen int) error {
	if maxLen > 0 && len(rawURL) > maxLen {
		return ErrURLTooLong
	}
	if strings.ContainsAny(rawURL, " \t\r\n\x00") {
		return ErrInvalidURL
	}

	u, err := url.Parse(WithScheme(rawURL))
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Hostname() == "" {
		return ErrInvalidURL
	}
	return nil
}

// SanitizeFilename removes dangerous characters from filename
func SanitizeFilename(filename string) string {
	dangerousChars := []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*", "\x00"}
	result := filename
	for _, char := range dangerousChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)
	return strings.Trim(strings.TrimSpace(result), ".")
}

// TruncateFilename truncates filename to max length while preserving extension
// Uses rune-level truncation to properly handle UTF-8 multi-byte characters
func TruncateFilename(filename string, maxLen int) string {
	runes := []rune(filename)
	if len(runes) <= maxLen {
		return filename
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		return string(runes[:maxLen])
	}

	availableLen := maxLen - len([]rune(ext))
	if availableLen <= 0 {
		return string(runes[:maxLen])
	}
	return string(runes[:availableLen]) + ext
}

// MediaFilename builds the attachment name for a streamed download
func MediaFilename(base, ext string, maxLen int) string {
	name := SanitizeFilename(base)
	if name == "" {
		name = "video"
	}
	return TruncateFilename(name+"."+ext, maxLen)
}
