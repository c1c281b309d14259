package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is one row of the tariff table: a price valid for a brand/product over a window.
type Price struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	BrandID   int64           `gorm:"column:brand_id;not null;index:idx_prices_brand_product_window,priority:1"`
	ProductID int64           `gorm:"column:product_id;not null;index:idx_prices_brand_product_window,priority:2"`
	PriceList int64           `gorm:"column:price_list;not null"`
	StartDate time.Time       `gorm:"column:start_date;not null;index:idx_prices_brand_product_window,priority:3"`
	EndDate   time.Time       `gorm:"column:end_date;not null;index:idx_prices_brand_product_window,priority:4"`
	Priority  int             `gorm:"column:priority;not null;default:0"`
	Amount    decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Currency  string          `gorm:"column:currency;type:char(3);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Price) TableName() string { return "prices" }
