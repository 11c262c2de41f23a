// Package metadata captures who is on the other end of a request: client IP
// and a parsed User-Agent. Handlers and audit logs read it from the context.
package metadata

import (
	"context"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// ClientInfo describes the connecting client.
type ClientInfo struct {
	IP      string
	Browser string
	OS      string
	Bot     bool
}

type contextKeyClientInfo struct{}

// ClientMetadata extracts the client IP and parses the User-Agent, storing a
// ClientInfo in the context. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := ClientInfo{IP: clientIP(r)}
		if raw := r.Header.Get("User-Agent"); raw != "" {
			ua := useragent.New(raw)
			name, version := ua.Browser()
			info.Browser = strings.TrimSpace(name + " " + version)
			info.OS = ua.OS()
			info.Bot = ua.Bot()
		}
		ctx := context.WithValue(r.Context(), contextKeyClientInfo{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Client retrieves the ClientInfo from the context.
func Client(ctx context.Context) ClientInfo {
	info, ok := ctx.Value(contextKeyClientInfo{}).(ClientInfo)
	if !ok {
		return ClientInfo{}
	}
	return info
}

// WithClient injects a ClientInfo, for tests that skip the middleware chain.
func WithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, contextKeyClientInfo{}, info)
}

// clientIP resolves the original client address behind proxies.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}
