package clientip

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

type contextKey struct{}

// FromRequest returns the client address of r. Each trusted header is tried
// in order and may hold a comma separated list, in which case the first valid
// address wins. RemoteAddr is the fallback.
func FromRequest(r *http.Request, trustedHeaders ...string) string {
	for _, h := range trustedHeaders {
		for v := range strings.SplitSeq(r.Header.Get(h), ",") {
			if ip := parse(v); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parse(r.RemoteAddr)
	}
	return parse(host)
}

// Middleware stores the client address in the request context.
func Middleware(trustedHeaders ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithContext(r.Context(), FromRequest(r, trustedHeaders...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// LogAttr is a logger context extractor adding client_ip.
func LogAttr(ctx context.Context) (slog.Attr, bool) {
	if ip := FromContext(ctx); ip != "" {
		return slog.String("client_ip", ip), true
	}
	return slog.Attr{}, false
}

// parse returns the canonical form of s, unmapping IPv4-in-IPv6 addresses.
func parse(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.Unmap().WithZone("").String()
}
