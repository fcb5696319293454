package httputil

import (
	"net"
	"net/http"
)

// ClientIP extracts the client address for rate limiting. The router runs
// chi's RealIP middleware first, so RemoteAddr already reflects
// X-Forwarded-For / X-Real-IP when present.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
