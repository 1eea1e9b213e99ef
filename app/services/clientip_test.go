// Package services provides external service integrations and technical concerns like tokens and lookups
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name         string
		forwardedFor string
		remoteAddr   string
		expected     string
	}{
		{
			name:         "no forwarded header uses peer address",
			forwardedFor: "",
			remoteAddr:   "203.0.113.9",
			expected:     "203.0.113.9",
		},
		{
			name:         "single forwarded hop wins",
			forwardedFor: "198.51.100.7",
			remoteAddr:   "10.0.0.1",
			expected:     "198.51.100.7",
		},
		{
			name:         "first hop of chain wins",
			forwardedFor: "198.51.100.7, 10.0.0.2, 10.0.0.1",
			remoteAddr:   "10.0.0.1",
			expected:     "198.51.100.7",
		},
		{
			name:         "whitespace around hops is trimmed",
			forwardedFor: "  198.51.100.7 , 10.0.0.1",
			remoteAddr:   "10.0.0.1",
			expected:     "198.51.100.7",
		},
		{
			name:         "ipv4-mapped ipv6 prefix is stripped",
			forwardedFor: "",
			remoteAddr:   "::ffff:203.0.113.9",
			expected:     "203.0.113.9",
		},
		{
			name:         "mapped prefix stripped from forwarded hop",
			forwardedFor: "::ffff:198.51.100.7",
			remoteAddr:   "10.0.0.1",
			expected:     "198.51.100.7",
		},
		{
			name:         "empty forwarded entries fall back to peer",
			forwardedFor: " , ",
			remoteAddr:   "203.0.113.9",
			expected:     "203.0.113.9",
		},
		{
			name:         "plain ipv6 is kept as is",
			forwardedFor: "",
			remoteAddr:   "2001:db8::1",
			expected:     "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClientIP(tt.forwardedFor, tt.remoteAddr))
		})
	}
}
