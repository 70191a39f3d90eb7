package utils

import (
	"net/http/httptest"
	"testing"
)

func TestResolveSourceIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		expected   string
	}{
		{"peer address without header", "", "192.168.1.20:53211", "192.168.1.20"},
		{"single forwarded address", "203.0.113.7", "10.0.0.1:80", "203.0.113.7"},
		{"first of forwarded chain", " 203.0.113.7 , 10.0.0.2, 10.0.0.3", "10.0.0.1:80", "203.0.113.7"},
		{"blank header falls back", "   ", "10.0.0.1:80", "10.0.0.1"},
		{"ipv6 peer", "", "[2001:db8::1]:4000", "2001:db8::1"},
		{"peer without port", "", "172.16.0.4", "172.16.0.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/log", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set(ForwardedForHeader, tt.forwarded)
			}

			if got := ResolveSourceIP(req); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
