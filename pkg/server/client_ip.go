package server

import (
	"net"
	"net/http"
)

// ClientIP returns the IP of the peer that sent r. Forwarding headers are
// ignored; the adapter is not expected to sit behind a proxy it trusts.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
