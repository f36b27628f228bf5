package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svelazco/storeflow-backend/internal/listing"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

func seededMemStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	if err := Seed(context.Background(), store); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return store
}

func defaultQuery(overrides func(*listing.Input)) listing.Query {
	in := listing.Input{}
	if overrides != nil {
		overrides(&in)
	}
	return listing.Normalize(in, ListOptions())
}

func TestMemoryStoreSearchMatchesSingleProduct(t *testing.T) {
	store := seededMemStore(t)

	q := defaultQuery(func(in *listing.Input) { in.Search = "mouse" })
	dtos, meta, err := store.List(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, dtos, 1)
	assert.Equal(t, "Mouse Inalámbrico", dtos[0].Name)
	assert.Equal(t, int64(1), meta.TotalItems)
	assert.Equal(t, 30, dtos[0].Stock)
	assert.Equal(t, "Centro: 18, Norte: 12", dtos[0].StockDetail)
}

func TestMemoryStoreStatusFilter(t *testing.T) {
	store := seededMemStore(t)

	q := defaultQuery(func(in *listing.Input) { in.Status = "inactive" })
	dtos, meta, err := store.List(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, dtos, 1)
	assert.Equal(t, "Teclado Mecánico", dtos[0].Name)
	assert.Equal(t, int64(1), meta.TotalItems)

	q = defaultQuery(func(in *listing.Input) { in.Status = "active" })
	dtos, _, err = store.List(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, dtos, 2)
}

func TestMemoryStoreCategoryFilter(t *testing.T) {
	store := seededMemStore(t)

	q := defaultQuery(func(in *listing.Input) { in.Category = "accesorios" })
	dtos, _, err := store.List(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	// Default sort is name ASC.
	assert.Equal(t, "Mouse Inalámbrico", dtos[0].Name)
	assert.Equal(t, "Teclado Mecánico", dtos[1].Name)
}

func TestMemoryStorePagination(t *testing.T) {
	store := NewMemoryStore()
	for i := 1; i <= 25; i++ {
		_, err := store.Create(context.Background(), CreateProductInput{
			Name:  fmt.Sprintf("Producto %02d", i),
			Price: decimal.NewFromInt(int64(i)),
		})
		require.NoError(t, err)
	}

	q := defaultQuery(func(in *listing.Input) { in.Page = "2" })
	dtos, meta, err := store.List(context.Background(), q)
	require.NoError(t, err)

	assert.Len(t, dtos, 10)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(25), meta.TotalItems)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
	require.NotNil(t, meta.NextPage)
	assert.Equal(t, 3, *meta.NextPage)
	require.NotNil(t, meta.PrevPage)
	assert.Equal(t, 1, *meta.PrevPage)

	q = defaultQuery(func(in *listing.Input) { in.Page = "3" })
	dtos, meta, err = store.List(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, dtos, 5)
	assert.False(t, meta.HasNextPage)
	assert.Nil(t, meta.NextPage)
}

func TestMemoryStorePageBeyondEnd(t *testing.T) {
	store := seededMemStore(t)

	q := defaultQuery(func(in *listing.Input) { in.Page = "99" })
	dtos, meta, err := store.List(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, dtos)
	assert.Equal(t, int64(3), meta.TotalItems)
	assert.False(t, meta.HasNextPage)
}

func TestMemoryStoreSortByPriceDesc(t *testing.T) {
	store := seededMemStore(t)

	q := defaultQuery(func(in *listing.Input) {
		in.SortBy = "price"
		in.SortOrder = "desc"
	})
	dtos, _, err := store.List(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, dtos, 3)
	assert.Equal(t, "Laptop Dell Inspiron", dtos[0].Name)
	assert.Equal(t, "Teclado Mecánico", dtos[1].Name)
	assert.Equal(t, "Mouse Inalámbrico", dtos[2].Name)
}

func TestMemoryStoreCRUDRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, CreateProductInput{
		Name:     "Monitor 27",
		Category: "computacion",
		Price:    decimal.NewFromFloat(249.50),
		Stock:    map[string]int{"Centro": 4},
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, 4, created.Stock)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	name := "Monitor 27 UHD"
	updated, err := store.Update(ctx, created.ID, UpdateProductInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Monitor 27 UHD", updated.Name)

	toggled, err := store.SetActive(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	stocked, err := store.SetBranchStock(ctx, created.ID, "Norte", 7)
	require.NoError(t, err)
	assert.Equal(t, 11, stocked.Stock)
	assert.Equal(t, "Centro: 4, Norte: 7", stocked.StockDetail)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.IsNotFound(store.Delete(ctx, created.ID)))
}

func TestMemoryStoreStatsAndLowStock(t *testing.T) {
	store := seededMemStore(t)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.InactiveProducts)
	assert.Equal(t, int64(53), stats.TotalUnits)

	low, meta, err := store.LowStock(ctx, 10, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Laptop Dell Inspiron", low[0].Name)
	assert.Equal(t, int64(1), meta.TotalItems)
	assert.Equal(t, pagination.ReportLimit, meta.PerPage)
}
