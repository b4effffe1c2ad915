package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// TrustedRealIP rewrites r.RemoteAddr to the client address reported by
// X-Real-IP or X-Forwarded-For, but only when the connection itself comes
// from one of the configured proxy networks. The per-IP rate limiter keys on
// RemoteAddr, so accepting those headers from arbitrary peers would let any
// import client dodge its budget by inventing addresses.
//
// Entries may be CIDRs ("10.0.0.0/8") or single addresses ("127.0.0.1").
func TrustedRealIP(proxies []string) func(http.Handler) http.Handler {
	trusted := parseProxyNets(proxies)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fromTrustedProxy(r.RemoteAddr, trusted) {
				if ip := forwardedClientIP(r); ip != nil {
					r.RemoteAddr = ip.String()
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// parseProxyNets turns the configured proxy list into networks, widening a
// bare address to a single-host network. Unparseable entries are logged and
// dropped rather than failing startup.
func parseProxyNets(proxies []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range proxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if _, network, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, network)
			continue
		}

		if ip := net.ParseIP(entry); ip != nil {
			mask := net.CIDRMask(128, 128)
			if ip.To4() != nil {
				mask = net.CIDRMask(32, 32)
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: mask})
			continue
		}

		slog.Warn("ignoring trusted proxy entry, neither CIDR nor IP", "entry", entry)
	}
	return nets
}

// forwardedClientIP reads the client address a proxy reported. X-Real-IP
// wins over X-Forwarded-For; in a forwarding chain the first hop is the
// original client. Values that do not parse as addresses are ignored.
func forwardedClientIP(r *http.Request) net.IP {
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return net.ParseIP(strings.TrimSpace(rip))
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx > 0 {
			first = xff[:idx]
		}
		return net.ParseIP(strings.TrimSpace(first))
	}

	return nil
}

// fromTrustedProxy reports whether the connection's peer address falls in
// any of the trusted networks. addr may carry a port.
func fromTrustedProxy(addr string, trusted []*net.IPNet) bool {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
