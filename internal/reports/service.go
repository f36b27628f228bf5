// Package reports composes the product and order services into read-only
// report views. Reports inherit the fallback behavior of the services they
// read from, so they keep answering while the backend is degraded.
package reports

import (
	"context"

	"github.com/svelazco/storeflow-backend/internal/orders"
	"github.com/svelazco/storeflow-backend/internal/products"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

// ProductSource is the slice of the product service reports read from.
type ProductSource interface {
	Stats(ctx context.Context) (*products.InventoryStats, error)
	LowStock(ctx context.Context, threshold int, params pagination.Params) ([]products.ProductDTO, pagination.Meta, error)
}

// OrderSource is the slice of the order service reports read from.
type OrderSource interface {
	Stats(ctx context.Context) (*orders.SalesStats, error)
}

// InventoryReport is the inventory report payload.
type InventoryReport struct {
	Stats         products.InventoryStats `json:"stats"`
	LowStockLimit int                     `json:"low_stock_threshold"`
	LowStock      []products.ProductDTO   `json:"low_stock"`
	Pagination    pagination.Meta         `json:"pagination"`
}

// SalesReport is the sales report payload.
type SalesReport struct {
	Stats orders.SalesStats `json:"stats"`
}

// Service builds reports from the domain services.
type Service struct {
	products  ProductSource
	orders    OrderSource
	threshold int
}

// NewService wires the report service. threshold is the stock level under
// which a product counts as low on stock.
func NewService(p ProductSource, o OrderSource, threshold int) *Service {
	if threshold < 1 {
		threshold = 10
	}
	return &Service{products: p, orders: o, threshold: threshold}
}

// Inventory returns catalog aggregates plus a page of low-stock products,
// lowest stock first. Report pages default to the report limit.
func (s *Service) Inventory(ctx context.Context, params pagination.Params) (*InventoryReport, error) {
	stats, err := s.products.Stats(ctx)
	if err != nil {
		return nil, err
	}

	low, meta, err := s.products.LowStock(ctx, s.threshold, params)
	if err != nil {
		return nil, err
	}

	return &InventoryReport{
		Stats:         *stats,
		LowStockLimit: s.threshold,
		LowStock:      low,
		Pagination:    meta,
	}, nil
}

// Sales returns order aggregates: per-status counts and completed revenue.
func (s *Service) Sales(ctx context.Context) (*SalesReport, error) {
	stats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &SalesReport{Stats: *stats}, nil
}
