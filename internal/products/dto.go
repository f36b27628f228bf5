package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/svelazco/storeflow-backend/internal/listing"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

// ProductDTO is the product shape both store implementations return.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	IsActive      bool            `json:"is_active"`
	Stock         int             `json:"stock"`
	StockByBranch map[string]int  `json:"stock_by_branch"`
	StockDetail   string          `json:"stock_detail"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductList is the full listing response envelope.
type ProductList struct {
	Products   []ProductDTO          `json:"products"`
	Pagination pagination.Meta       `json:"pagination"`
	Filters    listing.EchoedFilters `json:"filters"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	IsActive    *bool
	Stock       map[string]int
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	IsActive    *bool
}

// InventoryStats aggregates the catalog for the inventory report.
type InventoryStats struct {
	TotalProducts    int64 `json:"total_products"`
	ActiveProducts   int64 `json:"active_products"`
	InactiveProducts int64 `json:"inactive_products"`
	TotalUnits       int64 `json:"total_units"`
}

// ListOptions declares the normalization rules for product listings.
func ListOptions() listing.Options {
	return listing.Options{
		SortFields:   []string{"name", "price", "category", "created_at"},
		DefaultSort:  "name",
		DefaultOrder: listing.OrderAsc,
		DefaultLimit: pagination.DefaultLimit,
	}
}
