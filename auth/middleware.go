// HTTP middleware forming the access gateway: every task route passes
// through RequireAuth, which either attaches a verified owner id to the
// request context or ends the request with a 401 before any handler runs.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/user/tasklist-go/apperror"
)

// ContextKey is a dedicated type for context keys, preventing collisions
// with keys set by other packages.
type ContextKey string

// ownerIDKey is the context key under which the verified owner id is stored.
const ownerIDKey ContextKey = "ownerID"

// TokenVerifier resolves a bearer token to the user id it is bound to.
// AuthService satisfies it; tests substitute fakes.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireAuth returns middleware that enforces the bearer-token contract on
// a route group. A missing Authorization header fails immediately, without
// invoking the verifier; a present token is verified and, on success, the
// resolved owner id is placed into the request context for downstream
// handlers. No guarded handler can execute without an owner id in context.
func RequireAuth(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("authorization header is missing", nil))
				return
			}

			// The header must have the exact shape "Bearer <token>".
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("authorization header format must be Bearer {token}", nil))
				return
			}

			ownerID, err := verifier.VerifyToken(parts[1])
			if err != nil {
				WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerIDFromContext retrieves the owner id placed by RequireAuth. The bool
// is false when the request did not pass through the middleware.
func OwnerIDFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerIDKey).(string)
	return ownerID, ok && ownerID != ""
}

// NewContextWithOwnerID returns a child context carrying the given owner id.
// Handlers get this via the middleware; tests use it to build requests that
// look as if they had passed the gateway.
func NewContextWithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}
