// Package security validates the remote locations tabtint is asked to fetch.
package security

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrPrivateHost is returned for URLs that point at loopback, private or
// link-local addresses when those are not allowed.
var ErrPrivateHost = errors.New("URL points to a local or private host")

// ValidateFaviconURL checks that raw is an absolute http(s) URL with a host.
// Unless allowPrivate is set, hosts that resolve by name or literal address
// to the local machine or a private network are rejected.
func ValidateFaviconURL(raw string, allowPrivate bool) error {
	if raw == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("invalid URL: must start with http:// or https://")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	if !allowPrivate {
		if host := strings.ToLower(parsed.Hostname()); IsLocalOrPrivateHost(host) {
			return fmt.Errorf("%w: %s", ErrPrivateHost, host)
		}
	}
	return nil
}

// IsLocalOrPrivateHost reports whether host names the local machine or is a
// literal address in a loopback, private, link-local or unspecified range.
// Host names other than localhost are not resolved.
func IsLocalOrPrivateHost(host string) bool {
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
