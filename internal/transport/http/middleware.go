package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"solvibe/internal/domain"
	obsmw "solvibe/internal/observability/middleware"
	"solvibe/internal/service"
)

type identityKey struct{}

func contextWithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the authenticated caller attached by the auth
// middleware, if any. Handlers pass the identity to services explicitly; this
// is the only place it lives in a context.
func IdentityFrom(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return id, ok && id != nil
}

func bearerToken(r *http.Request) (string, bool) {
	raw := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return "", false
	}
	return strings.TrimSpace(raw[len("Bearer "):]), true
}

// RequireIdentity rejects requests without a valid session token.
func RequireIdentity(tokens service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			id, err := tokens.Parse(r.Context(), tok)
			if err != nil {
				slog.Warn("rejected session token",
					"error", err,
					"request_id", obsmw.RequestIDFromContext(r.Context()),
				)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithIdentity(r.Context(), id)))
		})
	}
}

// OptionalIdentity attaches the caller when a valid token is presented and
// lets anonymous requests through untouched. An invalid token is treated as
// anonymous, not as an error: visibility decides what anonymous callers see.
func OptionalIdentity(tokens service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok, ok := bearerToken(r); ok {
				if id, err := tokens.Parse(r.Context(), tok); err == nil {
					r = r.WithContext(contextWithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
