package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
	"github.com/angelmondragon/prices-backend/pkg/logger"
	"github.com/angelmondragon/prices-backend/pkg/metrics"
)

// Service answers "what does this product cost in this chain at this instant".
type Service interface {
	GetApplicablePrice(ctx context.Context, chainID, productID int64, at time.Time) (Price, error)
}

// ServiceParams wires the resolution service. Only Store is required.
type ServiceParams struct {
	Store Store
	// Pushdown, when set, replaces FindApplicable + SelectHighestPriority with a single query.
	Pushdown HighestPriorityFinder
	Cache    *Cache
	Metrics  *metrics.ResolutionMetrics
	Logger   *logger.Logger
}

type service struct {
	store    Store
	pushdown HighestPriorityFinder
	cache    *Cache
	metrics  *metrics.ResolutionMetrics
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("price store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:    params.Store,
		pushdown: params.Pushdown,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logg:     logg,
	}, nil
}

func (s *service) GetApplicablePrice(ctx context.Context, chainID, productID int64, at time.Time) (Price, error) {
	if err := validateQuery(chainID, productID, at); err != nil {
		return Price{}, err
	}
	at = at.UTC()
	ctx = s.logg.WithPriceQuery(ctx, chainID, productID)

	cacheKey := ""
	if s.cache != nil {
		p, key, ok := s.fromCache(ctx, chainID, productID, at)
		if ok {
			s.metrics.IncOutcome(metrics.OutcomeFound)
			return p, nil
		}
		cacheKey = key
	}

	p, err := s.resolve(ctx, chainID, productID, at)
	switch {
	case errors.Is(err, ErrNotFound):
		s.metrics.IncOutcome(metrics.OutcomeNotFound)
		return Price{}, ErrNotFound
	case err != nil:
		s.metrics.IncOutcome(metrics.OutcomeError)
		return Price{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load applicable prices")
	}

	s.metrics.IncOutcome(metrics.OutcomeFound)
	if cacheKey != "" {
		if err := s.cache.Put(ctx, cacheKey, p); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "price.cache.write_failed")
		}
	}
	return p, nil
}

func (s *service) resolve(ctx context.Context, chainID, productID int64, at time.Time) (Price, error) {
	start := time.Now()
	if s.pushdown != nil {
		p, ok, err := s.pushdown.FindHighestPriority(ctx, chainID, productID, at)
		s.metrics.ObserveDuration(metrics.SourcePushdown, time.Since(start))
		if err != nil {
			return Price{}, err
		}
		if !ok {
			return Price{}, ErrNotFound
		}
		return p, nil
	}

	candidates, err := s.store.FindApplicable(ctx, chainID, productID, at)
	s.metrics.ObserveDuration(metrics.SourceStore, time.Since(start))
	if err != nil {
		return Price{}, err
	}
	return SelectHighestPriority(candidates)
}

// fromCache returns the cached price when present, plus the key to write through on a miss.
// Cache failures only cost a lookup; they are logged and never surface to the caller.
func (s *service) fromCache(ctx context.Context, chainID, productID int64, at time.Time) (Price, string, bool) {
	start := time.Now()
	key, err := s.cache.Key(ctx, chainID, productID, at)
	if err != nil {
		s.metrics.IncCacheLookup(metrics.CacheError)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "price.cache.read_failed")
		return Price{}, "", false
	}

	p, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.IncCacheLookup(metrics.CacheError)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "price.cache.read_failed")
		return Price{}, key, false
	case !ok:
		s.metrics.IncCacheLookup(metrics.CacheMiss)
		return Price{}, key, false
	}

	s.metrics.IncCacheLookup(metrics.CacheHit)
	s.metrics.ObserveDuration(metrics.SourceCache, time.Since(start))
	return p, key, true
}

func validateQuery(chainID, productID int64, at time.Time) error {
	details := map[string]string{}
	if chainID <= 0 {
		details["chainId"] = "must be a positive integer"
	}
	if productID <= 0 {
		details["productId"] = "must be a positive integer"
	}
	if at.IsZero() {
		details["date"] = "is required"
	}
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid price query").WithDetails(details)
}
