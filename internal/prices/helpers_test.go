package prices

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/prices-backend/pkg/config"
	"github.com/angelmondragon/prices-backend/pkg/db"
	"github.com/angelmondragon/prices-backend/pkg/db/models"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts.UTC()
}

func amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func price(t *testing.T, list int64, priority int, value, from, to string) Price {
	t.Helper()
	return Price{
		ChainID:      1,
		ProductID:    35455,
		PriceListID:  list,
		ValidFrom:    at(t, from),
		ValidTo:      at(t, to),
		Priority:     priority,
		Amount:       amount(value),
		CurrencyCode: "EUR",
	}
}

// referenceTariffs mirrors the seed migration.
func referenceTariffs(t *testing.T) []Price {
	t.Helper()
	return []Price{
		price(t, 1, 0, "35.50", "2020-06-14 00:00:00", "2020-12-31 23:59:59"),
		price(t, 2, 1, "25.45", "2020-06-14 15:00:00", "2020-06-14 18:30:00"),
		price(t, 3, 1, "30.50", "2020-06-15 00:00:00", "2020-06-15 11:00:00"),
		price(t, 4, 1, "38.95", "2020-06-15 16:00:00", "2020-12-31 23:59:59"),
	}
}

func newTestDB(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: config.DBDriverSQLite}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().AutoMigrate(&models.Price{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return client
}

func seed(t *testing.T, repo Repository, batch []Price) []Record {
	t.Helper()
	records, err := repo.CreateBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("seed prices: %v", err)
	}
	return records
}

// fakeCacheBackend is an in-memory stand-in for pkg/redis.Client.
type fakeCacheBackend struct {
	mu          sync.Mutex
	data        map[string]string
	generations map[string]int64
	ttls        map[string]time.Duration

	getErr  error
	setErr  error
	genErr  error
	bumpErr error
	gets    int
}

func newFakeCacheBackend() *fakeCacheBackend {
	return &fakeCacheBackend{
		data:        map[string]string{},
		generations: map[string]int64{},
		ttls:        map[string]time.Duration{},
	}
}

func (f *fakeCacheBackend) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeCacheBackend) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	s, ok := value.(string)
	if !ok {
		return errors.New("fake backend stores strings only")
	}
	f.data[key] = s
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCacheBackend) Generation(_ context.Context, chainID, productID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.genErr != nil {
		return 0, f.genErr
	}
	return f.generations[pairKey(chainID, productID)], nil
}

func (f *fakeCacheBackend) BumpGeneration(_ context.Context, chainID, productID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bumpErr != nil {
		return 0, f.bumpErr
	}
	k := pairKey(chainID, productID)
	f.generations[k]++
	return f.generations[k], nil
}

func (f *fakeCacheBackend) PriceKey(chainID, productID, generation int64, at time.Time) string {
	return pairKey(chainID, productID) + ":g" + strconv.FormatInt(generation, 10) + ":" + strconv.FormatInt(at.UTC().UnixNano(), 10)
}

func pairKey(chainID, productID int64) string {
	return strconv.FormatInt(chainID, 10) + ":" + strconv.FormatInt(productID, 10)
}

// stubStore counts calls and can be forced to fail.
type stubStore struct {
	mu      sync.Mutex
	records []Price
	err     error
	calls   int
}

func (s *stubStore) FindApplicable(_ context.Context, chainID, productID int64, at time.Time) ([]Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []Price
	for _, p := range s.records {
		if p.ChainID == chainID && p.ProductID == productID && p.AppliesAt(at) {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubFinder struct {
	price Price
	found bool
	err   error
	calls int
}

func (s *stubFinder) FindHighestPriority(context.Context, int64, int64, time.Time) (Price, bool, error) {
	s.calls++
	return s.price, s.found, s.err
}
