package controllers

import (
	"net/http"

	"github.com/angelmondragon/prices-backend/api/responses"
	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
	"github.com/angelmondragon/prices-backend/pkg/logger"
)

func NotFound(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	}
}

func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
