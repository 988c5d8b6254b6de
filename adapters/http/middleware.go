// Package authhttp adapts the token validator to net/http. The middleware
// reads the Authorization header, validates the bearer token, and attaches
// the resulting identity to the request context; failed requests are
// rejected with 401 and the context stays unauthenticated.
package authhttp

import (
	"context"
	"fmt"
	"net/http"

	verifykit "github.com/open-rails/tokenkit/verify"
)

type identityKey struct{}

// WithIdentity returns a context carrying the verified payload.
func WithIdentity(ctx context.Context, p *verifykit.Payload) context.Context {
	return context.WithValue(ctx, identityKey{}, p)
}

// IdentityFromContext returns the verified payload attached by Middleware.
func IdentityFromContext(ctx context.Context) (*verifykit.Payload, bool) {
	p, ok := ctx.Value(identityKey{}).(*verifykit.Payload)
	return p, ok
}

// Middleware gates next behind token validation.
func Middleware(v *verifykit.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, err := v.ValidateRequest(r.Context(), r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", fmt.Sprintf(
					"Bearer realm=%q, error=\"invalid_token\", error_description=%q",
					v.IssuerURL(), err.Error(),
				))
				http.Error(w, "invalid or missing token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), payload)))
		})
	}
}
