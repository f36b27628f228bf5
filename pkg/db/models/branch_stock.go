package models

import (
	"time"

	"github.com/google/uuid"
)

// BranchStock holds the inventory quantity for one product at one branch.
type BranchStock struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_branch_stocks_product_branch"`
	Branch    string    `gorm:"column:branch;not null;uniqueIndex:idx_branch_stocks_product_branch"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
