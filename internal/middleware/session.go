package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the browser session id.
const SessionCookie = "shurl_session"

type sessionIDKey struct{}

// ContextWithSessionID adds the session id to context.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext extracts the session id from context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return v
	}

	return ""
}

// Session reads the session cookie, issuing a new one when it is missing or malformed.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""

		if c, err := r.Cookie(SessionCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = uuid.NewString()

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(ContextWithSessionID(r.Context(), id)))
	})
}
