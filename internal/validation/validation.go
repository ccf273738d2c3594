package validation

import (
	"net/url"
	"strings"

	"serptrack/internal/models"
)

// ValidateKeywordText checks a keyword phrase for tracking or lookup.
func ValidateKeywordText(text string) (bool, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false, "keyword is required"
	}
	if len(trimmed) > 255 {
		return false, "keyword must be at most 255 characters"
	}
	return true, ""
}

// ValidateDomainURL checks a tracked domain string. A bare hostname or a
// full http(s) URL is accepted; other schemes are rejected.
func ValidateDomainURL(raw string) (bool, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false, "domain is required"
	}

	if strings.Contains(trimmed, "://") {
		u, err := url.Parse(trimmed)
		if err != nil {
			return false, "invalid domain URL"
		}
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return false, "domain must use http:// or https://"
		}
		if u.Host == "" {
			return false, "domain must have a valid host"
		}
		return true, ""
	}

	host := trimmed
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if host == "" || !strings.Contains(host, ".") {
		return false, "domain must be a valid hostname"
	}
	return true, ""
}

// ValidateDevice checks the device type.
func ValidateDevice(device string) (bool, string) {
	if device != models.DeviceDesktop && device != models.DeviceMobile {
		return false, "device must be desktop or mobile"
	}
	return true, ""
}

// ValidateLocation checks an ISO-ish location code such as "us" or "gb-en".
func ValidateLocation(location string) (bool, string) {
	code := strings.ToLower(strings.TrimSpace(location))
	if code == "" {
		return false, "location is required"
	}
	parts := strings.Split(code, "-")
	if len(parts) > 2 {
		return false, "location must look like \"us\" or \"gb-en\""
	}
	for _, part := range parts {
		if len(part) != 2 || !isAlpha(part) {
			return false, "location must look like \"us\" or \"gb-en\""
		}
	}
	return true, ""
}

// NormalizeLocation lowercases a location code.
func NormalizeLocation(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
