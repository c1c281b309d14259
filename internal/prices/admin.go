package prices

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
	"github.com/angelmondragon/prices-backend/pkg/logger"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AdminService maintains the tariff table.
type AdminService interface {
	Ingest(ctx context.Context, batch []Price) ([]Record, error)
	List(ctx context.Context, filter ListFilter) (RecordPage, error)
	Delete(ctx context.Context, id int64) error
}

type AdminServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Cache  *Cache
	Logger *logger.Logger
}

type adminService struct {
	repo  Repository
	tx    txRunner
	cache *Cache
	logg  *logger.Logger
}

func NewAdminService(params AdminServiceParams) (AdminService, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("price repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &adminService{
		repo:  params.Repo,
		tx:    params.Tx,
		cache: params.Cache,
		logg:  logg,
	}, nil
}

// Ingest stores the batch atomically; any invalid price rejects the whole batch.
func (s *adminService) Ingest(ctx context.Context, batch []Price) ([]Record, error) {
	if err := ValidateBatch(batch); err != nil {
		return nil, batchValidationError(err)
	}

	var created []Record
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		records, err := s.repo.WithTx(tx).CreateBatch(ctx, batch)
		if err != nil {
			return err
		}
		created = records
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store price batch")
	}

	seen := map[[2]int64]struct{}{}
	for _, p := range batch {
		pair := [2]int64{p.ChainID, p.ProductID}
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		s.invalidate(ctx, p.ChainID, p.ProductID)
	}

	s.logg.Info(s.logg.WithField(ctx, "count", len(created)), "price.batch.ingested")
	return created, nil
}

func (s *adminService) List(ctx context.Context, filter ListFilter) (RecordPage, error) {
	page, err := s.repo.List(ctx, filter)
	if errors.Is(err, errInvalidCursor) {
		return RecordPage{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]string{"cursor": "is malformed"})
	}
	if err != nil {
		return RecordPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list prices")
	}
	return page, nil
}

func (s *adminService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid price id").
			WithDetails(map[string]string{"priceId": "must be a positive integer"})
	}

	var removed Record
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		removed = record
		return nil
	})
	if errors.Is(err, ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete price")
	}

	s.invalidate(ctx, removed.Price.ChainID, removed.Price.ProductID)
	s.logg.Info(s.logg.WithField(ctx, "price_id", id), "price.deleted")
	return nil
}

func (s *adminService) invalidate(ctx context.Context, chainID, productID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, chainID, productID); err != nil {
		logCtx := s.logg.WithPriceQuery(ctx, chainID, productID)
		s.logg.Error(logCtx, "price.cache.invalidate_failed", err)
	}
}
