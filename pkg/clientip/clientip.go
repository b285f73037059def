package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Headers set by the proxies in front of the web client, by priority.
// X-Forwarded-For is handled separately since it holds a list.
var (
	headersBeforeForwarded = []string{"CF-Connecting-IP", "DO-Connecting-IP"}
	headersAfterForwarded  = []string{"X-Real-IP"}
)

// GetIP returns the client address of r. Proxy headers win over RemoteAddr;
// invalid values are skipped. The result is "" when nothing is usable.
func GetIP(r *http.Request) string {
	for _, h := range headersBeforeForwarded {
		if ip := parseIP(r.Header.Get(h)); ip != "" {
			return ip
		}
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for candidate := range strings.SplitSeq(forwarded, ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	for _, h := range headersAfterForwarded {
		if ip := parseIP(r.Header.Get(h)); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP normalizes s, unmapping IPv4 in IPv6 addresses and dropping zones.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ""
	}
	return addr.Unmap().WithZone("").String()
}
