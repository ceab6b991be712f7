package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"go.uber.org/zap"
)

// RealIP rewrites RemoteAddr from X-Forwarded-For or X-Real-IP, but only
// when the direct peer is one of the trusted proxies. With no trusted
// proxies the headers are ignored and RemoteAddr is left as is.
// Entries are CIDRs ("10.0.0.0/8") or single addresses.
func RealIP(trusted []string, logger *zap.Logger) func(http.Handler) http.Handler {
	prefixes := parseProxies(trusted, logger)

	return func(next http.Handler) http.Handler {
		if len(prefixes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peer, ok := addrOf(r.RemoteAddr); ok && isTrusted(prefixes, peer) {
				if ip := forwardedFor(r, prefixes); ip != "" {
					r.RemoteAddr = ip
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseProxies(trusted []string, logger *zap.Logger) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, raw := range trusted {
		if p, err := netip.ParsePrefix(raw); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			logger.Warn("Ignoring invalid trusted proxy", zap.String("value", raw))
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}

// forwardedFor walks X-Forwarded-For right to left and returns the first
// hop that is not a trusted proxy.
func forwardedFor(r *http.Request, prefixes []netip.Prefix) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				return ""
			}
			addr = addr.Unmap()
			if !isTrusted(prefixes, addr) {
				return addr.String()
			}
		}
	}

	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	return ""
}

func addrOf(remoteAddr string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func isTrusted(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
