package middleware

import (
	"net/http"

	"github.com/angelmondragon/prices-backend/api/responses"
	"github.com/angelmondragon/prices-backend/api/validators"
	pkgAuth "github.com/angelmondragon/prices-backend/pkg/auth"
	"github.com/angelmondragon/prices-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
	"github.com/angelmondragon/prices-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the operator claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token, err := validators.BearerToken(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithActor(r.Context(), claims.Subject, claims.Role)
			if logg != nil {
				ctx = logg.WithActor(ctx, claims.Subject)
				ctx = logg.WithField(ctx, "actor_role", string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
