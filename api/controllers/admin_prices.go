package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/prices-backend/api/responses"
	"github.com/angelmondragon/prices-backend/api/validators"
	"github.com/angelmondragon/prices-backend/internal/prices"
	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
	"github.com/angelmondragon/prices-backend/pkg/logger"
	"github.com/angelmondragon/prices-backend/pkg/pagination"
)

// AdminListPrices pages through stored tariffs, optionally narrowed to a chain/product.
func AdminListPrices(svc prices.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "price admin service unavailable"))
			return
		}

		chainID, err := validators.ParsePositiveID(r, false, "chainId", "brandId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePositiveID(r, false, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), prices.ListFilter{
			ChainID:   chainID,
			ProductID: productID,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: validators.SanitizeString(r.URL.Query().Get("cursor"), validators.MaxCursorLength),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, prices.NewRecordPageResponse(page))
	}
}

// AdminIngestPrices stores a batch of tariffs; the whole batch is rejected on any violation.
func AdminIngestPrices(svc prices.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "price admin service unavailable"))
			return
		}

		var payload prices.IngestRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.Ingest(r.Context(), payload.ToDomain())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, prices.NewRecordResponses(records))
	}
}

// AdminDeletePrice removes one tariff row by id.
func AdminDeletePrice(svc prices.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "price admin service unavailable"))
			return
		}

		id, err := validators.ParsePathID("priceId", chi.URLParam(r, "priceId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
