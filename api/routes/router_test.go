package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/prices-backend/api/controllers"
	"github.com/angelmondragon/prices-backend/api/middleware"
	"github.com/angelmondragon/prices-backend/internal/prices"
	"github.com/angelmondragon/prices-backend/pkg/auth"
	"github.com/angelmondragon/prices-backend/pkg/config"
	"github.com/angelmondragon/prices-backend/pkg/db"
	"github.com/angelmondragon/prices-backend/pkg/db/models"
	"github.com/angelmondragon/prices-backend/pkg/logger"
	"github.com/angelmondragon/prices-backend/pkg/metrics"
)

type testServer struct {
	handler http.Handler
	cfg     *config.Config
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		App:  config.AppConfig{Env: "test", Timezone: "UTC"},
		JWT:  config.JWTConfig{Secret: "test-secret", Issuer: "prices", ExpirationMinutes: 60},
		HTTP: config.HTTPConfig{CORSOrigins: []string{"*"}},
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	client, err := db.New(ctx, config.DBConfig{DSN: dsn, Driver: config.DBDriverSQLite}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().AutoMigrate(&models.Price{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := prices.NewRepository(client.DB())
	if _, err := repo.CreateBatch(ctx, referenceTariffs()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	logg := logger.Nop()
	svc, err := prices.NewService(prices.ServiceParams{Store: repo, Logger: logg})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	admin, err := prices.NewAdminService(prices.AdminServiceParams{Repo: repo, Tx: client, Logger: logg})
	if err != nil {
		t.Fatalf("admin service: %v", err)
	}

	reg := prometheus.NewRegistry()
	handler := NewRouter(Deps{
		Config:      cfg,
		Logger:      logg,
		Prices:      svc,
		Admin:       admin,
		Readiness:   []controllers.ReadinessCheck{{Name: "db", Pinger: client}},
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		RateLimiter: middleware.NewRateLimiter(1000, 1000, false, logg),
	})
	return testServer{handler: handler, cfg: cfg}
}

func referenceTariffs() []prices.Price {
	tariff := func(list int64, priority int, amount, from, to string) prices.Price {
		parse := func(v string) time.Time {
			ts, err := time.Parse("2006-01-02 15:04:05", v)
			if err != nil {
				panic(err)
			}
			return ts
		}
		return prices.Price{
			ChainID:      1,
			ProductID:    35455,
			PriceListID:  list,
			ValidFrom:    parse(from),
			ValidTo:      parse(to),
			Priority:     priority,
			Amount:       decimal.RequireFromString(amount),
			CurrencyCode: "EUR",
		}
	}
	return []prices.Price{
		tariff(1, 0, "35.50", "2020-06-14 00:00:00", "2020-12-31 23:59:59"),
		tariff(2, 1, "25.45", "2020-06-14 15:00:00", "2020-06-14 18:30:00"),
		tariff(3, 1, "30.50", "2020-06-15 00:00:00", "2020-06-15 11:00:00"),
		tariff(4, 1, "38.95", "2020-06-15 16:00:00", "2020-12-31 23:59:59"),
	}
}

func (s testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	return resp
}

func (s testServer) token(t *testing.T, role auth.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(s.cfg.JWT, time.Now(), auth.AccessTokenPayload{Subject: "ops", Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type priceBody struct {
	Data struct {
		ProductID    int64       `json:"productId"`
		ChainID      int64       `json:"chainId"`
		PriceListID  int64       `json:"priceListId"`
		ValidFrom    time.Time   `json:"validFrom"`
		ValidTo      time.Time   `json:"validTo"`
		Amount       json.Number `json:"amount"`
		CurrencyCode string      `json:"currencyCode"`
	} `json:"data"`
}

func TestApplicablePriceReferenceScenarios(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		date      string
		wantList  int64
		wantPrice string
	}{
		{"2020-06-14T10:00:00", 1, "35.50"},
		{"2020-06-14T16:00:00", 2, "25.45"},
		{"2020-06-14T21:00:00", 1, "35.50"},
		{"2020-06-15T10:00:00", 3, "30.50"},
		{"2020-06-16T21:00:00", 4, "38.95"},
	}
	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/api/v1/prices?brandId=1&productId=35455&date="+tc.date, "", "")
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
			}
			var body priceBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Data.PriceListID != tc.wantList {
				t.Fatalf("expected price list %d, got %d", tc.wantList, body.Data.PriceListID)
			}
			if body.Data.Amount.String() != tc.wantPrice {
				t.Fatalf("expected amount %s, got %s", tc.wantPrice, body.Data.Amount)
			}
			if body.Data.ProductID != 35455 || body.Data.ChainID != 1 || body.Data.CurrencyCode != "EUR" {
				t.Fatalf("unexpected body %+v", body.Data)
			}
		})
	}
}

func TestApplicablePriceErrors(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]int{
		"/api/v1/prices?chainId=1&productId=99999&date=2020-06-14T10:00:00":  http.StatusNotFound,
		"/api/v1/prices?chainId=1&productId=35455&date=2019-01-01T00:00:00":  http.StatusNotFound,
		"/api/v1/prices?chainId=1&productId=35455":                           http.StatusBadRequest,
		"/api/v1/prices?chainId=-1&productId=35455&date=2020-06-14T10:00:00": http.StatusBadRequest,
		"/api/v1/prices?chainId=1&productId=x&date=2020-06-14T10:00:00":      http.StatusBadRequest,
		"/api/v1/prices?chainId=1&productId=35455&date=not-a-date":           http.StatusBadRequest,
		"/api/v1/unknown": http.StatusNotFound,
	}
	for path, want := range cases {
		resp := srv.do(t, http.MethodGet, path, "", "")
		if resp.Code != want {
			t.Fatalf("%s: expected %d, got %d: %s", path, want, resp.Code, resp.Body.String())
		}
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	srv := newTestServer(t)

	if resp := srv.do(t, http.MethodGet, "/api/admin/v1/prices", "", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
	if resp := srv.do(t, http.MethodGet, "/api/admin/v1/prices", srv.token(t, auth.RoleReader), ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for reader, got %d", resp.Code)
	}
	resp := srv.do(t, http.MethodGet, "/api/admin/v1/ping", srv.token(t, auth.RoleAdmin), "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"subject":"ops"`) {
		t.Fatalf("expected admin ping, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestAdminIngestListDeleteChangesResolution(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, auth.RoleAdmin)

	payload := `{"prices":[{"chainId":1,"productId":35455,"priceListId":5,
		"validFrom":"2020-06-14T09:00:00Z","validTo":"2020-06-14T11:00:00Z",
		"priority":5,"amount":"19.99","currencyCode":"EUR"}]}`
	resp := srv.do(t, http.MethodPost, "/api/admin/v1/prices/", token, payload)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || len(created.Data) != 1 {
		t.Fatalf("decode created: %v %+v", err, created)
	}

	resp = srv.do(t, http.MethodGet, "/api/v1/prices?chainId=1&productId=35455&date=2020-06-14T10:00:00", "", "")
	if !strings.Contains(resp.Body.String(), `"priceListId":5`) {
		t.Fatalf("expected new tariff to win: %s", resp.Body.String())
	}

	resp = srv.do(t, http.MethodGet, "/api/admin/v1/prices/?chainId=1&productId=35455&limit=2", token, "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"nextCursor"`) {
		t.Fatalf("expected paged listing, got %d %s", resp.Code, resp.Body.String())
	}

	resp = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/v1/prices/%d", created.Data[0].ID), token, "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	resp = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/v1/prices/%d", created.Data[0].ID), token, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.Code)
	}

	resp = srv.do(t, http.MethodGet, "/api/v1/prices?chainId=1&productId=35455&date=2020-06-14T10:00:00", "", "")
	if !strings.Contains(resp.Body.String(), `"priceListId":1`) {
		t.Fatalf("expected base tariff after delete: %s", resp.Body.String())
	}
}

func TestAdminIngestRejectsInvalidBatch(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, auth.RoleAdmin)

	payload := `{"prices":[{"chainId":1,"productId":35455,"priceListId":5,
		"validFrom":"2020-06-14T09:00:00Z","validTo":"2020-06-14T11:00:00Z",
		"priority":5,"amount":"-1","currencyCode":"EUR"}]}`
	resp := srv.do(t, http.MethodPost, "/api/admin/v1/prices/", token, payload)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"field":"amount"`) {
		t.Fatalf("expected per-record issue, got %s", resp.Body.String())
	}

	payload = `{"prices":[{"chainId":1,"productId":35455,"priceListId":5,
		"validFrom":"2020-06-14T09:00:00Z","validTo":"2020-06-14T11:00:00Z",
		"priority":5,"amount":"10.005","currencyCode":"EUR"}]}`
	resp = srv.do(t, http.MethodPost, "/api/admin/v1/prices/", token, payload)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for sub-cent amount, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "at most 2 decimal places") {
		t.Fatalf("expected scale issue, got %s", resp.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	if resp := srv.do(t, http.MethodGet, "/health/live", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("live: %d", resp.Code)
	}
	if resp := srv.do(t, http.MethodGet, "/health/ready", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("ready: %d %s", resp.Code, resp.Body.String())
	}

	srv.do(t, http.MethodGet, "/api/v1/prices?chainId=1&productId=35455&date=2020-06-14T10:00:00", "", "")
	resp := srv.do(t, http.MethodGet, "/metrics", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics: %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `http_requests_total{method="GET",route="/api/v1/prices",status="200"}`) {
		t.Fatalf("expected route metric, got %s", resp.Body.String())
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodGet, "/api/public/ping", "", "")
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}
