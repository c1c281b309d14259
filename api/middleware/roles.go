package middleware

import (
	"net/http"

	"github.com/angelmondragon/prices-backend/api/responses"
	"github.com/angelmondragon/prices-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
	"github.com/angelmondragon/prices-backend/pkg/logger"
)

func RequireRole(role auth.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required").
					WithDetails(map[string]string{"role": string(role)}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
