// Package platform maps post URLs to the social media platform they belong to.
package platform

import (
	"net/url"
	"strings"

	"socialdl/internal/model"
	"socialdl/pkg/validator"
)

type rule struct {
	platform model.Platform
	domains  []string
}

// rules are tested top to bottom and the first match wins. Domains are
// matched against the host itself or any of its subdomains.
var rules = []rule{
	{model.PlatformTikTok, []string{"tiktok.com"}},
	{model.PlatformInstagram, []string{"instagram.com"}},
	{model.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{model.PlatformTwitter, []string{"twitter.com", "x.com"}},
	{model.PlatformFacebook, []string{"facebook.com", "fb.watch"}},
	{model.PlatformSnapchat, []string{"snapchat.com"}},
}

// Classify returns the platform for rawURL, or model.PlatformUnknown.
// It never performs I/O and never fails. When no host can be parsed the
// whole lower-cased input is searched for a registered domain instead.
func Classify(rawURL string) model.Platform {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return model.PlatformUnknown
	}

	host := hostOf(s)
	for _, r := range rules {
		for _, domain := range r.domains {
			if host != "" && (host == domain || strings.HasSuffix(host, "."+domain)) {
				return r.platform
			}
			if host == "" && containsDomain(strings.ToLower(s), domain) {
				return r.platform
			}
		}
	}
	return model.PlatformUnknown
}

// IsSupported reports whether rawURL classifies to a known platform
func IsSupported(rawURL string) bool {
	return Classify(rawURL) != model.PlatformUnknown
}

// hostOf extracts the lower-cased host, tolerating a missing scheme
func hostOf(s string) string {
	u, err := url.Parse(validator.WithScheme(s))
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// containsDomain reports whether domain occurs in s as a whole host label
// sequence: preceded by start, '.' or '/', and followed by end or one of
// "/?#:".
func containsDomain(s, domain string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], domain)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(domain)
		before := start == 0 || s[start-1] == '.' || s[start-1] == '/'
		after := end == len(s) || strings.IndexByte("/?#:", s[end]) >= 0
		if before && after {
			return true
		}
		from = start + 1
	}
}
