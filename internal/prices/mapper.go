package prices

import (
	"strings"

	"github.com/angelmondragon/prices-backend/pkg/db/models"
)

func toDomain(row models.Price) Price {
	return Price{
		ChainID:      row.BrandID,
		ProductID:    row.ProductID,
		PriceListID:  row.PriceList,
		ValidFrom:    row.StartDate.UTC(),
		ValidTo:      row.EndDate.UTC(),
		Priority:     row.Priority,
		Amount:       row.Amount,
		CurrencyCode: strings.TrimSpace(row.Currency),
	}
}

func toRecord(row models.Price) Record {
	return Record{
		ID:        row.ID,
		Price:     toDomain(row),
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func toModel(p Price) models.Price {
	return models.Price{
		BrandID:   p.ChainID,
		ProductID: p.ProductID,
		PriceList: p.PriceListID,
		StartDate: p.ValidFrom.UTC(),
		EndDate:   p.ValidTo.UTC(),
		Priority:  p.Priority,
		Amount:    p.Amount,
		Currency:  p.CurrencyCode,
	}
}
