// Package clientip resolves the address a request came from.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the peer IP of r. Proxy headers are ignored so a
// client cannot pick its own rate-limit bucket.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
