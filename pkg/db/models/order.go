package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/svelazco/storeflow-backend/pkg/enums"
)

// Order is a customer order with its embedded line items.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Reference    string            `gorm:"column:reference;not null;uniqueIndex"`
	CustomerName string            `gorm:"column:customer_name;not null"`
	Status       enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Total        decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Items        []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
