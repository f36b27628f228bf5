package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/svelazco/storeflow-backend/internal/listing"
	"github.com/svelazco/storeflow-backend/pkg/db/models"
	"github.com/svelazco/storeflow-backend/pkg/enums"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

var sortColumns = map[string]string{
	"created_at": "created_at",
	"total":      "total",
	"status":     "status",
	"customer":   "LOWER(customer_name)",
}

// Repository is the relational order store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one filtered, sorted page of orders with their line items
// preloaded. The total comes from a separate count round trip.
func (r *Repository) List(ctx context.Context, q listing.Query) ([]OrderDTO, pagination.Meta, error) {
	var total int64
	if err := r.filtered(ctx, q).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	var rows []models.Order
	err := r.filtered(ctx, q).
		Preload("Items").
		Order(orderClause(q)).
		Limit(q.Limit).
		Offset(q.Params().Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	dtos := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}
	return dtos, pagination.NewMeta(q.Page, q.Limit, total), nil
}

// filtered applies ci substring search over customer name and reference plus
// the optional status equality.
func (r *Repository) filtered(ctx context.Context, q listing.Query) *gorm.DB {
	qb := r.db.WithContext(ctx).Model(&models.Order{})

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where(
			"(LOWER(customer_name) LIKE ? OR LOWER(reference) LIKE ?)",
			pattern, pattern,
		)
	}
	if status := enums.OrderStatus(q.Status); status.Valid() {
		qb = qb.Where("status = ?", status)
	}
	return qb
}

func orderClause(q listing.Query) string {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns["created_at"]
	}
	direction := "ASC"
	if q.Desc() {
		direction = "DESC"
	}
	return column + " " + direction
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	dto := toDTO(order)
	return &dto, nil
}

// Create inserts the order and its items in one transaction. The reference
// is generated server-side and the total is derived from the items.
func (r *Repository) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	order := models.Order{
		ID:           uuid.New(),
		Reference:    NewReference(),
		CustomerName: strings.TrimSpace(input.CustomerName),
		Status:       enums.OrderStatusPending,
		Total:        input.Total(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, item := range input.Items {
			row := models.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, order.ID)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return r.Get(ctx, id)
}

// Delete removes an order; its items cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// Stats aggregates per-status counts and the revenue of completed orders.
func (r *Repository) Stats(ctx context.Context) (*SalesStats, error) {
	stats := SalesStats{ByStatus: map[string]int64{}}

	type statusCount struct {
		Status enums.OrderStatus
		Count  int64
	}
	var counts []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, row := range counts {
		stats.ByStatus[row.Status.String()] = row.Count
		stats.TotalOrders += row.Count
	}

	var revenue decimal.Decimal
	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ?", enums.OrderStatusCompleted).
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	stats.CompletedRevenue = revenue
	return &stats, nil
}

func toDTO(order models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return OrderDTO{
		ID:           order.ID,
		Reference:    order.Reference,
		CustomerName: order.CustomerName,
		Status:       order.Status,
		Total:        order.Total,
		Items:        items,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}
