package products

import (
	"context"

	"github.com/google/uuid"

	"github.com/svelazco/storeflow-backend/internal/listing"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

// Store is the capability contract for product collections. The relational
// and in-memory implementations produce pages of identical shape so callers
// stay agnostic to which one answered.
type Store interface {
	List(ctx context.Context, q listing.Query) ([]ProductDTO, pagination.Meta, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductDTO, error)
	SetBranchStock(ctx context.Context, id uuid.UUID, branch string, quantity int) (*ProductDTO, error)
	Stats(ctx context.Context) (*InventoryStats, error)
	LowStock(ctx context.Context, threshold int, params pagination.Params) ([]ProductDTO, pagination.Meta, error)
}
