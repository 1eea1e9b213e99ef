// Package services provides external service integrations and technical concerns like tokens and lookups
package services

import (
	"strings"
)

// ipv4MappedPrefix is the IPv4-mapped IPv6 prefix some stacks prepend
const ipv4MappedPrefix = "::ffff:"

// ClientIP derives the client address from the forwarded-for chain,
// falling back to the transport-level peer address. The first hop of
// X-Forwarded-For wins and the IPv4-mapped IPv6 prefix is stripped.
func ClientIP(forwardedFor, remoteAddr string) string {
	ip := remoteAddr
	if forwardedFor != "" {
		parts := strings.Split(forwardedFor, ",")
		first := strings.TrimSpace(parts[0])
		if first != "" {
			ip = first
		}
	}
	return strings.TrimPrefix(ip, ipv4MappedPrefix)
}
