package reports

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svelazco/storeflow-backend/internal/orders"
	"github.com/svelazco/storeflow-backend/internal/products"
	"github.com/svelazco/storeflow-backend/pkg/enums"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

func seededSources(t *testing.T) (*products.MemoryStore, *orders.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	catalog := products.NewMemoryStore()
	require.NoError(t, products.Seed(ctx, catalog))

	sales := orders.NewMemoryStore()
	created, err := sales.Create(ctx, orders.CreateOrderInput{
		CustomerName: "Ana Morales",
		Items: []orders.OrderItemInput{
			{ProductName: "Laptop Dell Inspiron", Quantity: 1, UnitPrice: decimal.NewFromFloat(899.99)},
		},
	})
	require.NoError(t, err)
	_, err = sales.UpdateStatus(ctx, created.ID, enums.OrderStatusCompleted)
	require.NoError(t, err)
	_, err = sales.Create(ctx, orders.CreateOrderInput{CustomerName: "Bruno Díaz"})
	require.NoError(t, err)

	return catalog, sales
}

func TestInventoryReport(t *testing.T) {
	catalog, sales := seededSources(t)
	svc := NewService(catalog, sales, 10)

	report, err := svc.Inventory(context.Background(), pagination.Params{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.Stats.TotalProducts)
	assert.Equal(t, int64(2), report.Stats.ActiveProducts)
	assert.Equal(t, int64(53), report.Stats.TotalUnits)
	assert.Equal(t, 10, report.LowStockLimit)

	require.Len(t, report.LowStock, 1)
	assert.Equal(t, "Laptop Dell Inspiron", report.LowStock[0].Name)
	assert.Equal(t, pagination.ReportLimit, report.Pagination.PerPage)
}

func TestSalesReport(t *testing.T) {
	catalog, sales := seededSources(t)
	svc := NewService(catalog, sales, 10)

	report, err := svc.Sales(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Stats.TotalOrders)
	assert.Equal(t, int64(1), report.Stats.ByStatus["completed"])
	assert.Equal(t, int64(1), report.Stats.ByStatus["pending"])
	assert.True(t, decimal.NewFromFloat(899.99).Equal(report.Stats.CompletedRevenue))
}

func TestThresholdDefault(t *testing.T) {
	catalog, sales := seededSources(t)
	svc := NewService(catalog, sales, 0)

	report, err := svc.Inventory(context.Background(), pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, 10, report.LowStockLimit)
}
