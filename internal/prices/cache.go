package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/prices-backend/pkg/redis"
	"github.com/shopspring/decimal"
)

// CacheBackend is the slice of pkg/redis.Client the resolution cache depends on.
type CacheBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Generation(ctx context.Context, chainID, productID int64) (int64, error)
	BumpGeneration(ctx context.Context, chainID, productID int64) (int64, error)
	PriceKey(chainID, productID, generation int64, at time.Time) string
}

// Cache memoises resolved prices per instant. Entries live under the pair's current
// generation; bumping the generation orphans them all at once.
type Cache struct {
	backend CacheBackend
	ttl     time.Duration
}

func NewCache(backend CacheBackend, ttl time.Duration) (*Cache, error) {
	if backend == nil {
		return nil, errors.New("cache backend required")
	}
	if ttl <= 0 {
		return nil, errors.New("cache ttl must be positive")
	}
	return &Cache{backend: backend, ttl: ttl}, nil
}

// Key pins the generation current at lookup time, so a value computed before an
// invalidation is written under the already-orphaned key.
func (c *Cache) Key(ctx context.Context, chainID, productID int64, at time.Time) (string, error) {
	gen, err := c.backend.Generation(ctx, chainID, productID)
	if err != nil {
		return "", fmt.Errorf("read cache generation: %w", err)
	}
	return c.backend.PriceKey(chainID, productID, gen, at), nil
}

func (c *Cache) Get(ctx context.Context, key string) (Price, bool, error) {
	raw, err := c.backend.Get(ctx, key)
	if redis.IsMiss(err) {
		return Price{}, false, nil
	}
	if err != nil {
		return Price{}, false, err
	}
	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Price{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry.toPrice(), true, nil
}

func (c *Cache) Put(ctx context.Context, key string, p Price) error {
	payload, err := json.Marshal(newCacheEntry(p))
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.backend.Set(ctx, key, string(payload), c.ttl)
}

// Invalidate drops every cached instant for the pair.
func (c *Cache) Invalidate(ctx context.Context, chainID, productID int64) error {
	_, err := c.backend.BumpGeneration(ctx, chainID, productID)
	return err
}

type cacheEntry struct {
	ChainID      int64           `json:"c"`
	ProductID    int64           `json:"p"`
	PriceListID  int64           `json:"l"`
	ValidFrom    time.Time       `json:"f"`
	ValidTo      time.Time       `json:"t"`
	Priority     int             `json:"pr"`
	Amount       decimal.Decimal `json:"a"`
	CurrencyCode string          `json:"cur"`
}

func newCacheEntry(p Price) cacheEntry {
	return cacheEntry{
		ChainID:      p.ChainID,
		ProductID:    p.ProductID,
		PriceListID:  p.PriceListID,
		ValidFrom:    p.ValidFrom.UTC(),
		ValidTo:      p.ValidTo.UTC(),
		Priority:     p.Priority,
		Amount:       p.Amount,
		CurrencyCode: p.CurrencyCode,
	}
}

func (e cacheEntry) toPrice() Price {
	return Price{
		ChainID:      e.ChainID,
		ProductID:    e.ProductID,
		PriceListID:  e.PriceListID,
		ValidFrom:    e.ValidFrom.UTC(),
		ValidTo:      e.ValidTo.UTC(),
		Priority:     e.Priority,
		Amount:       e.Amount,
		CurrencyCode: e.CurrencyCode,
	}
}
