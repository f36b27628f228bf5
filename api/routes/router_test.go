package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/svelazco/storeflow-backend/internal/auth"
	"github.com/svelazco/storeflow-backend/internal/availability"
	"github.com/svelazco/storeflow-backend/internal/orders"
	"github.com/svelazco/storeflow-backend/internal/products"
	"github.com/svelazco/storeflow-backend/internal/reports"
	"github.com/svelazco/storeflow-backend/internal/users"
	"github.com/svelazco/storeflow-backend/pkg/config"
)

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "storeflow-test",
			ExpirationMinutes: 30,
		},
		Engine: config.EngineConfig{LowStockThreshold: 10},
	}
}

// brokenDB opens a sqlite connection without any schema so every query fails
// the way a dead backend would.
func brokenDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func newTestServer(t *testing.T, prober *availability.Prober, productRepo products.Store) (http.Handler, *config.Config) {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()

	catalog := products.NewMemoryStore()
	require.NoError(t, products.Seed(ctx, catalog))
	productSvc := products.NewService(productRepo, catalog, prober, nil, nil)

	orderSvc := orders.NewService(nil, orders.NewMemoryStore(), prober, nil, nil)
	reportSvc := reports.NewService(productSvc, orderSvc, cfg.Engine.LowStockThreshold)

	accounts := users.NewMemoryStore()
	require.NoError(t, accounts.SeedAdmin(
		config.SeedConfig{AdminUsername: "admin", AdminPassword: "admin123"},
		config.PasswordConfig{},
	))
	authSvc := auth.NewService(nil, accounts, prober, cfg.JWT, nil)

	handler := New(Dependencies{
		Config:   cfg,
		Products: productSvc,
		Orders:   orderSvc,
		Reports:  reportSvc,
		Auth:     authSvc,
		Prober:   prober,
	})
	return handler, cfg
}

func doJSON(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "",
		`{"username":"admin","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func TestListingSurvivesBackendFailure(t *testing.T) {
	// The prober believes the backend is up, but every relational query
	// fails. The response must come from memory with the same shape.
	prober := availability.NewProber(okPinger{}, nil, nil, nil, time.Second)
	require.NoError(t, prober.Probe(context.Background()))

	repo := products.NewRepository(brokenDB(t), prober)
	handler, _ := newTestServer(t, prober, repo)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products?search=mouse", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
		Pagination struct {
			TotalItems int64 `json:"total_items"`
		} `json:"pagination"`
		Filters struct {
			Search string `json:"search"`
		} `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "Mouse Inalámbrico", body.Products[0].Name)
	assert.Equal(t, int64(1), body.Pagination.TotalItems)
	assert.Equal(t, "mouse", body.Filters.Search)

	assert.False(t, prober.Available())

	rec = doJSON(t, handler, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ready map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "memory", ready["mode"])
	assert.Equal(t, "unavailable", ready["database"])
}

func TestPublicListingAndEnvelope(t *testing.T) {
	handler, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products?status=inactive", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Products []struct {
			Name        string `json:"name"`
			StockDetail string `json:"stock_detail"`
		} `json:"products"`
		Filters struct {
			SortBy    string `json:"sort_by"`
			SortOrder string `json:"sort_order"`
		} `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "Teclado Mecánico", body.Products[0].Name)
	assert.Equal(t, "Centro: 15", body.Products[0].StockDetail)
	assert.Equal(t, "name", body.Filters.SortBy)
	assert.Equal(t, "ASC", body.Filters.SortOrder)
}

func TestMutationsRequireAuth(t *testing.T) {
	handler, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", "",
		`{"name":"Webcam HD","price":"49.99"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := loginToken(t, handler)
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products", token,
		`{"name":"Webcam HD","price":"49.99","stock":{"Centro":3}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID    string `json:"id"`
		Stock int    `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 3, created.Stock)

	// Create-then-search round trip.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products?search=webcam", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)
}

func TestValidationErrors(t *testing.T) {
	handler, _ := newTestServer(t, nil, nil)
	token := loginToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", token, `{"price":"1.00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	handler, _ := newTestServer(t, nil, nil)
	token := loginToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/orders", "",
		`{"customer_name":"Ana Morales","items":[{"product_name":"Mouse Inalámbrico","quantity":2,"unit_price":"19.99"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Total  string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "39.98", created.Total)

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/orders/"+created.ID+"/status", token,
		`{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"completed"`)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/orders?status=completed", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/orders/"+created.ID+"/status", token,
		`{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportsRequireAuth(t *testing.T) {
	handler, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/inventory", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := loginToken(t, handler)
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/inventory", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		Stats struct {
			TotalProducts int64 `json:"total_products"`
			TotalUnits    int64 `json:"total_units"`
		} `json:"stats"`
		LowStock []struct {
			Name string `json:"name"`
		} `json:"low_stock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, int64(3), report.Stats.TotalProducts)
	assert.Equal(t, int64(53), report.Stats.TotalUnits)
	require.Len(t, report.LowStock, 1)
	assert.Equal(t, "Laptop Dell Inspiron", report.LowStock[0].Name)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/sales", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "by_status")
}

func TestNotFoundMapsTo404(t *testing.T) {
	handler, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, handler, http.MethodGet,
		"/api/v1/products/6e9a1aa1-0000-4000-8000-000000000000", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}
