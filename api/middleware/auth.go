package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/SamuelGunda/NowAround-Backend-sub000/api/responses"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/identity"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

// TokenVerifier validates bearer tokens issued by the identity provider.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*identity.Principal, error)
}

// Auth validates a bearer token and seeds the request context with the caller.
func Auth(verifier TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			principal, err := verifier.VerifyIDToken(r.Context(), token)
			if err != nil {
				if pkgerrors.As(err) == nil {
					err = pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if principal == nil || principal.IdentityRef == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token has no subject"))
				return
			}

			ctx := WithIdentity(r.Context(), principal.IdentityRef, principal.Role)
			if logg != nil {
				ctx = logg.WithIdentityRef(ctx, principal.IdentityRef)
				ctx = logg.WithActorRole(ctx, string(principal.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
