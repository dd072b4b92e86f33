// Package net provides networking utilities.
package net

import (
	"net"
	"net/url"

	"vidrelay/internal/utils/logging"
)

// IsPrivateNetwork returns true if the host is detected as a LAN address.
//
// Accepts "host", "host:port" or a full URL. Hostnames are resolved, and any private
// address counts.
func IsPrivateNetwork(host string) bool {
	h := hostOnly(host)
	if h == "" {
		return false
	}
	if h == "localhost" {
		return true
	}

	if ip := net.ParseIP(h); ip != nil {
		return IsPrivateIP(ip)
	}
	return isPrivateHostname(h)
}

// IsPrivateIP reports whether ip is loopback, RFC 1918/4193 private or link-local.
func IsPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// hostOnly strips any scheme, port and brackets from host.
func hostOnly(host string) string {
	if u, err := url.Parse(host); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// isPrivateHostname resolves h and checks the resulting addresses.
func isPrivateHostname(h string) bool {
	ips, err := net.LookupIP(h)
	if err != nil {
		logging.D(1, "Failed to resolve hostname %q: %v", h, err)
		return false
	}
	for _, ip := range ips {
		if IsPrivateIP(ip) {
			logging.D(2, "Host %q resolved to private IP address %q", h, ip)
			return true
		}
	}
	logging.D(2, "Host %q resolved to public IP addresses %v", h, ips)
	return false
}
