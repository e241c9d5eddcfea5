package api

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// LocalOrigin reports whether r carries no Origin header or one naming a
// page served from this machine. Requests from other sites are refused
// actions.
func LocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || loopbackOrigin(origin)
}

// OverlayOrigin is LocalOrigin that also admits pages opened from disk,
// which browsers report as the opaque origin "null". Use it for read-only
// streams such as the toast websocket.
func OverlayOrigin(r *http.Request) bool {
	return r.Header.Get("Origin") == "null" || LocalOrigin(r)
}

func loopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
