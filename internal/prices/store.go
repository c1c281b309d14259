package prices

import (
	"context"
	"time"

	"github.com/angelmondragon/prices-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Store returns the prices whose window contains at for the chain/product pair.
// Callers must not rely on ordering for correctness; an empty result is not an error.
type Store interface {
	FindApplicable(ctx context.Context, chainID, productID int64, at time.Time) ([]Price, error)
}

// HighestPriorityFinder lets the store pick the winner itself. Implementations must break
// ties exactly as SelectHighestPriority does over FindApplicable's order.
type HighestPriorityFinder interface {
	FindHighestPriority(ctx context.Context, chainID, productID int64, at time.Time) (Price, bool, error)
}

// ListFilter narrows the admin listing; zero ids mean "any".
type ListFilter struct {
	ChainID    int64
	ProductID  int64
	Pagination pagination.Params
}

// RecordPage is one page of the admin listing.
type RecordPage struct {
	Records    []Record
	NextCursor string
}

// Repository is the full persistence surface used by the services.
type Repository interface {
	Store
	HighestPriorityFinder
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, prices []Price) ([]Record, error)
	List(ctx context.Context, filter ListFilter) (RecordPage, error)
	FindByID(ctx context.Context, id int64) (Record, error)
	Delete(ctx context.Context, id int64) error
}
