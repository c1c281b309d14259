package prices

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PriceResponse is the public shape of a resolved price.
type PriceResponse struct {
	ProductID    int64       `json:"productId"`
	ChainID      int64       `json:"chainId"`
	PriceListID  int64       `json:"priceListId"`
	ValidFrom    time.Time   `json:"validFrom"`
	ValidTo      time.Time   `json:"validTo"`
	Amount       json.Number `json:"amount"`
	CurrencyCode string      `json:"currencyCode"`
}

func NewPriceResponse(p Price) PriceResponse {
	return PriceResponse{
		ProductID:    p.ProductID,
		ChainID:      p.ChainID,
		PriceListID:  p.PriceListID,
		ValidFrom:    p.ValidFrom.UTC(),
		ValidTo:      p.ValidTo.UTC(),
		Amount:       formatAmount(p.Amount),
		CurrencyCode: p.CurrencyCode,
	}
}

// formatAmount pads to the column scale and never rounds away digits.
func formatAmount(d decimal.Decimal) json.Number {
	if d.Exponent() < -AmountScale && !d.Equal(d.Truncate(AmountScale)) {
		return json.Number(d.String())
	}
	return json.Number(d.StringFixed(AmountScale))
}

// RecordResponse adds storage identity and priority for administrators.
type RecordResponse struct {
	ID        int64     `json:"id"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	PriceResponse
}

func NewRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:            r.ID,
		Priority:      r.Price.Priority,
		CreatedAt:     r.CreatedAt.UTC(),
		PriceResponse: NewPriceResponse(r.Price),
	}
}

func NewRecordResponses(records []Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, NewRecordResponse(r))
	}
	return out
}

// IngestRequest is the admin batch payload.
type IngestRequest struct {
	Prices []IngestItem `json:"prices" validate:"required,min=1,max=500,dive"`
}

type IngestItem struct {
	ChainID      int64           `json:"chainId" validate:"required,gt=0"`
	ProductID    int64           `json:"productId" validate:"required,gt=0"`
	PriceListID  int64           `json:"priceListId" validate:"required,gt=0"`
	ValidFrom    time.Time       `json:"validFrom" validate:"required"`
	ValidTo      time.Time       `json:"validTo" validate:"required,gtefield=ValidFrom"`
	Priority     int             `json:"priority"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode" validate:"required,len=3,uppercase"`
}

func (r IngestRequest) ToDomain() []Price {
	out := make([]Price, 0, len(r.Prices))
	for _, item := range r.Prices {
		out = append(out, Price{
			ChainID:      item.ChainID,
			ProductID:    item.ProductID,
			PriceListID:  item.PriceListID,
			ValidFrom:    item.ValidFrom.UTC(),
			ValidTo:      item.ValidTo.UTC(),
			Priority:     item.Priority,
			Amount:       item.Amount,
			CurrencyCode: item.CurrencyCode,
		})
	}
	return out
}

// RecordPageResponse is the admin listing payload.
type RecordPageResponse struct {
	Records    []RecordResponse `json:"records"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

func NewRecordPageResponse(page RecordPage) RecordPageResponse {
	return RecordPageResponse{
		Records:    NewRecordResponses(page.Records),
		NextCursor: page.NextCursor,
	}
}
