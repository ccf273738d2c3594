// Package hostmatch decides whether a search-result URL belongs to a tracked
// domain. Matching is by normalized hostname, exact or subdomain.
package hostmatch

import "strings"

// Normalize reduces a URL or domain string to a comparable hostname:
// scheme stripped, leading "www." stripped, lower-cased, path cut off.
func Normalize(raw string) string {
	h := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(h, "://"); i >= 0 {
		h = h[i+3:]
	}
	h = strings.TrimPrefix(h, "www.")
	if i := strings.IndexByte(h, '/'); i >= 0 {
		h = h[:i]
	}
	return h
}

// Match reports whether resultURL belongs to targetDomain, either exactly or
// as a subdomain. Malformed result URLs that normalize to an empty host are
// skipped, never matched.
func Match(resultURL, targetDomain string) bool {
	target := Normalize(targetDomain)
	if target == "" {
		return false
	}
	host := Normalize(resultURL)
	if host == "" {
		return false
	}
	return host == target || strings.HasSuffix(host, "."+target)
}
