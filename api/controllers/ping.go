package controllers

import (
	"net/http"

	"github.com/angelmondragon/prices-backend/api/middleware"
	"github.com/angelmondragon/prices-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// AdminPing echoes the authenticated operator, useful to check a minted token.
func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"scope":   "admin",
			"status":  "ok",
			"subject": middleware.ActorFromContext(r.Context()),
			"role":    string(middleware.RoleFromContext(r.Context())),
		})
	}
}
