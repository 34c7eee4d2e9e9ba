package netx

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Edge headers carrying the original client address, most trusted first.
var clientIPHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Nf-Client-Connection-Ip",
}

// ClientIP returns the caller's address as reported by the edge, falling
// back to the socket peer. It returns "unknown" when nothing parses.
func ClientIP(r *http.Request) string {
	for _, h := range clientIPHeaders {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For is "client, proxy1, proxy2"
		first := strings.TrimSpace(strings.Split(v, ",")[0])
		if addr, err := netip.ParseAddr(first); err == nil {
			return addr.Unmap().String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}
	return "unknown"
}

// PublicIP reports whether ip is a routable unicast address worth
// geolocating.
func PublicIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsGlobalUnicast() && !addr.IsPrivate()
}
