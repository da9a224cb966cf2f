package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"ledger-service/internal/api/handlers"
	"ledger-service/internal/auth"
)

// requestLogger logs one line per request once it has been served.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			event := log.Info()
			if ww.Status() >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request served")
		})
	}
}

// authenticate turns a bearer token into a session on the request context.
func authenticate(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handlers.WriteError(w, http.StatusUnauthorized, "unauthorized", "authorization header required")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				handlers.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token format")
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				handlers.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			userID, _ := claims.UserID()

			ctx := handlers.WithSession(r.Context(), handlers.Session{
				UserID:   userID,
				Username: claims.Username,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// require rejects callers whose role lacks perm.
func require(perm auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := handlers.SessionFrom(r.Context())
			if !ok {
				handlers.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if !auth.Allowed(session.Role, perm) {
				handlers.WriteError(w, http.StatusForbidden, "forbidden", string(session.Role)+" may not use "+string(perm))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
