// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/festipay/festipay/internal/models"
)

type ctxKey string

const actorKey ctxKey = "actor"

// ActorResolver resolves a session token to its user.
type ActorResolver interface {
	// ActorFromToken returns the acting user for a live session token,
	// or nil for an unknown or revoked one.
	ActorFromToken(token string) *models.User
}

// TokenAuth is a middleware that enforces bearer-token authentication.
//
// It reads the session token from the Authorization header, resolves it
// to a user and stores the user in the request context so handlers and
// the policy layer can identify the actor. Requests without a live
// session are rejected; routes reachable by unauthenticated actors are
// mounted outside this middleware.
func TokenAuth(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			actor := resolver.ActorFromToken(token)
			if actor == nil {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route subtree to the given roles. It assumes
// TokenAuth already ran; requests whose actor holds none of the roles
// are rejected.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if actor == nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

// ActorFromContext extracts the authenticated user from the request
// context. Returns nil if not present.
func ActorFromContext(ctx context.Context) *models.User {
	if actor, ok := ctx.Value(actorKey).(*models.User); ok {
		return actor
	}
	return nil
}

// WithActor returns a context carrying the given actor. Intended for
// handler tests.
func WithActor(ctx context.Context, actor *models.User) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}
