package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/prices-backend/pkg/db/models"
	"github.com/angelmondragon/prices-backend/pkg/pagination"
	"gorm.io/gorm"
)

const applicableClause = "brand_id = ? AND product_id = ? AND start_date <= ? AND end_date >= ?"

type repository struct {
	db *gorm.DB
}

// NewRepository builds a price repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindApplicable returns candidates in insertion order (id ascending).
func (r *repository) FindApplicable(ctx context.Context, chainID, productID int64, at time.Time) ([]Price, error) {
	at = at.UTC()
	var rows []models.Price
	err := r.db.WithContext(ctx).
		Where(applicableClause, chainID, productID, at, at).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Price, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

// FindHighestPriority orders by priority then id so ties resolve to the earliest row,
// matching SelectHighestPriority over FindApplicable.
func (r *repository) FindHighestPriority(ctx context.Context, chainID, productID int64, at time.Time) (Price, bool, error) {
	at = at.UTC()
	var rows []models.Price
	err := r.db.WithContext(ctx).
		Where(applicableClause, chainID, productID, at, at).
		Order("priority DESC").
		Order("id ASC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return Price{}, false, err
	}
	if len(rows) == 0 {
		return Price{}, false, nil
	}
	return toDomain(rows[0]), true, nil
}

func (r *repository) CreateBatch(ctx context.Context, prices []Price) ([]Record, error) {
	if len(prices) == 0 {
		return nil, nil
	}
	rows := make([]models.Price, 0, len(prices))
	for _, p := range prices {
		rows = append(rows, toModel(p))
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRecord(row))
	}
	return out, nil
}

// List pages through records ordered by (start_date, id).
func (r *repository) List(ctx context.Context, filter ListFilter) (RecordPage, error) {
	cursor, err := pagination.ParseCursor(filter.Pagination.Cursor)
	if err != nil {
		return RecordPage{}, fmt.Errorf("%w: %v", errInvalidCursor, err)
	}
	limit := pagination.NormalizeLimit(filter.Pagination.Limit)

	query := r.db.WithContext(ctx).Model(&models.Price{})
	if filter.ChainID > 0 {
		query = query.Where("brand_id = ?", filter.ChainID)
	}
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if cursor != nil {
		query = query.Where("(start_date > ?) OR (start_date = ? AND id > ?)", cursor.At, cursor.At, cursor.ID)
	}

	var rows []models.Price
	if err := query.
		Order("start_date ASC").
		Order("id ASC").
		Limit(pagination.LimitWithBuffer(filter.Pagination.Limit)).
		Find(&rows).Error; err != nil {
		return RecordPage{}, err
	}

	page := RecordPage{}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{At: last.StartDate, ID: last.ID})
		rows = rows[:limit]
	}
	page.Records = make([]Record, 0, len(rows))
	for _, row := range rows {
		page.Records = append(page.Records, toRecord(row))
	}
	return page, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (Record, error) {
	var row models.Price
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return toRecord(row), nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Price{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

var errInvalidCursor = errors.New("invalid cursor")
