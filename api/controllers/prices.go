package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/prices-backend/api/responses"
	"github.com/angelmondragon/prices-backend/api/validators"
	"github.com/angelmondragon/prices-backend/internal/prices"
	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
	"github.com/angelmondragon/prices-backend/pkg/logger"
)

// ApplicablePrice answers GET /api/v1/prices?chainId=&productId=&date=.
// Dates without an offset are read in loc.
func ApplicablePrice(svc prices.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "price service unavailable"))
			return
		}

		chainID, err := validators.ParsePositiveID(r, true, "chainId", "brandId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePositiveID(r, true, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		at, err := validators.ParseQueryInstant(r, "date", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := svc.GetApplicablePrice(r.Context(), chainID, productID, at)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, prices.NewPriceResponse(price))
	}
}
