package prices

import (
	"time"

	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Price is the amount charged for a product in a retail chain while a tariff applies.
// Values are passed by copy and never modified once built.
type Price struct {
	ChainID      int64
	ProductID    int64
	PriceListID  int64
	ValidFrom    time.Time
	ValidTo      time.Time
	Priority     int
	Amount       decimal.Decimal
	CurrencyCode string
}

// AppliesAt reports whether at falls inside the inclusive validity window.
func (p Price) AppliesAt(at time.Time) bool {
	return !at.Before(p.ValidFrom) && !at.After(p.ValidTo)
}

// Equal compares field by field, using decimal and instant equality.
func (p Price) Equal(other Price) bool {
	return p.ChainID == other.ChainID &&
		p.ProductID == other.ProductID &&
		p.PriceListID == other.PriceListID &&
		p.ValidFrom.Equal(other.ValidFrom) &&
		p.ValidTo.Equal(other.ValidTo) &&
		p.Priority == other.Priority &&
		p.Amount.Equal(other.Amount) &&
		p.CurrencyCode == other.CurrencyCode
}

// Record is a stored price with its storage identity, used by the admin surface.
type Record struct {
	ID        int64
	Price     Price
	CreatedAt time.Time
}

// ErrNotFound is returned when no price applies to the queried instant.
var ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "no applicable price")

// ErrRecordNotFound is returned by admin operations addressing a missing row.
var ErrRecordNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "price record not found")
