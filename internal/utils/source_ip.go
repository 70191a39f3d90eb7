package utils

import (
	"net"
	"net/http"
	"strings"
)

const ForwardedForHeader = "X-Forwarded-For"

// ResolveSourceIP берет первый адрес из X-Forwarded-For, иначе адрес соединения.
func ResolveSourceIP(r *http.Request) string {
	if forwarded := r.Header.Get(ForwardedForHeader); strings.TrimSpace(forwarded) != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
