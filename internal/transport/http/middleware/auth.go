package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/linkatalog/linkatalog/internal/auth"
	"github.com/linkatalog/linkatalog/internal/constants"
	"github.com/linkatalog/linkatalog/pkg/httputils"
)

// TokenVerifier validates a bearer credential and yields the Principal it
// carries.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Principal, error)
}

type principalContextKey struct{}

// AuthMiddleware extracts the Authorization bearer token, verifies it, and
// stores the resulting Principal in the request context. Role checks happen
// in the service, which receives the Principal explicitly.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
				return
			}

			token := header
			if after, ok := strings.CutPrefix(header, "Bearer "); ok {
				token = strings.TrimSpace(after)
			}

			principal, err := verifier.VerifyToken(token)
			if err != nil {
				httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the Principal stored by AuthMiddleware, or nil
// when the request was not authenticated.
func PrincipalFromContext(ctx context.Context) *auth.Principal {
	principal, _ := ctx.Value(principalContextKey{}).(*auth.Principal)
	return principal
}
