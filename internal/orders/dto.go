package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/svelazco/storeflow-backend/internal/listing"
	"github.com/svelazco/storeflow-backend/pkg/enums"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

// OrderDTO is the order shape both store implementations return. Items is
// always a slice, never null, even for item-less orders.
type OrderDTO struct {
	ID           uuid.UUID         `json:"id"`
	Reference    string            `json:"reference"`
	CustomerName string            `json:"customer_name"`
	Status       enums.OrderStatus `json:"status"`
	Total        decimal.Decimal   `json:"total"`
	Items        []OrderItemDTO    `json:"items"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// OrderItemDTO is a single line of an order.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderList is the full listing response envelope.
type OrderList struct {
	Orders     []OrderDTO            `json:"orders"`
	Pagination pagination.Meta       `json:"pagination"`
	Filters    listing.EchoedFilters `json:"filters"`
}

// OrderItemInput is one validated line of a new order.
type OrderItemInput struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateOrderInput holds the validated payload to create an order. The total
// is always derived from the items, never taken from the client.
type CreateOrderInput struct {
	CustomerName string
	Items        []OrderItemInput
}

// Total sums quantity times unit price across the items.
func (in CreateOrderInput) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range in.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// SalesStats aggregates orders for the sales report.
type SalesStats struct {
	TotalOrders      int64            `json:"total_orders"`
	ByStatus         map[string]int64 `json:"by_status"`
	CompletedRevenue decimal.Decimal  `json:"completed_revenue"`
}

// ListOptions declares the normalization rules for order listings. Orders
// default to newest first.
func ListOptions() listing.Options {
	return listing.Options{
		SortFields:   []string{"created_at", "total", "status", "customer"},
		DefaultSort:  "created_at",
		DefaultOrder: listing.OrderDesc,
		DefaultLimit: pagination.DefaultLimit,
	}
}
