package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/serroba/shurl-web/internal/activity"
)

// RequestMeta adds client IP, user-agent, and referrer to the request context.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := activity.RequestMeta{
			ClientIP:  extractClientIP(r),
			UserAgent: r.UserAgent(),
			Referrer:  r.Referer(),
		}

		next.ServeHTTP(w, r.WithContext(activity.ContextWithRequestMeta(r.Context(), meta)))
	})
}

func extractClientIP(r *http.Request) string {
	// X-Forwarded-For may hold a chain; the first entry is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
