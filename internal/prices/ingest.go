package prices

import (
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
	"go.uber.org/multierr"
)

// MaxBatchSize bounds how many prices a single ingestion may carry.
const MaxBatchSize = 500

// AmountScale is the number of decimal places the prices.price column keeps.
const AmountScale = 2

// IngestIssue pins one rule violation to a batch position and field.
type IngestIssue struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i *IngestIssue) Error() string {
	return fmt.Sprintf("prices[%d].%s %s", i.Index, i.Field, i.Message)
}

// ValidateBatch checks every price and returns all violations combined, or nil.
func ValidateBatch(batch []Price) error {
	if len(batch) == 0 {
		return &IngestIssue{Index: -1, Field: "prices", Message: "must contain at least one price"}
	}
	if len(batch) > MaxBatchSize {
		return &IngestIssue{Index: -1, Field: "prices", Message: fmt.Sprintf("must contain at most %d prices", MaxBatchSize)}
	}
	var err error
	for i, p := range batch {
		err = multierr.Append(err, validatePrice(i, p))
	}
	return err
}

func validatePrice(index int, p Price) error {
	var err error
	if p.ChainID <= 0 {
		err = multierr.Append(err, &IngestIssue{Index: index, Field: "chainId", Message: "must be a positive integer"})
	}
	if p.ProductID <= 0 {
		err = multierr.Append(err, &IngestIssue{Index: index, Field: "productId", Message: "must be a positive integer"})
	}
	if p.PriceListID <= 0 {
		err = multierr.Append(err, &IngestIssue{Index: index, Field: "priceListId", Message: "must be a positive integer"})
	}
	if p.ValidFrom.IsZero() {
		err = multierr.Append(err, &IngestIssue{Index: index, Field: "validFrom", Message: "is required"})
	}
	if p.ValidTo.IsZero() {
		err = multierr.Append(err, &IngestIssue{Index: index, Field: "validTo", Message: "is required"})
	}
	if !p.ValidFrom.IsZero() && !p.ValidTo.IsZero() && p.ValidFrom.After(p.ValidTo) {
		err = multierr.Append(err, &IngestIssue{Index: index, Field: "validTo", Message: "must not be before validFrom"})
	}
	if p.Amount.IsNegative() {
		err = multierr.Append(err, &IngestIssue{Index: index, Field: "amount", Message: "must not be negative"})
	}
	if p.Amount.Exponent() < -AmountScale && !p.Amount.Equal(p.Amount.Truncate(AmountScale)) {
		err = multierr.Append(err, &IngestIssue{Index: index, Field: "amount", Message: fmt.Sprintf("must have at most %d decimal places", AmountScale)})
	}
	if !isCurrencyCode(p.CurrencyCode) {
		err = multierr.Append(err, &IngestIssue{Index: index, Field: "currencyCode", Message: "must be three upper-case letters"})
	}
	return err
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// batchValidationError turns combined ingest issues into the public validation error.
func batchValidationError(err error) error {
	issues := make([]IngestIssue, 0)
	for _, e := range multierr.Errors(err) {
		var issue *IngestIssue
		if errors.As(e, &issue) {
			issues = append(issues, *issue)
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price batch").WithDetails(issues)
}
