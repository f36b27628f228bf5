package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/svelazco/storeflow-backend/internal/listing"
	"github.com/svelazco/storeflow-backend/pkg/enums"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

// Store is the capability contract for order collections, implemented by the
// relational repository and the in-memory store.
type Store interface {
	List(ctx context.Context, q listing.Query) ([]OrderDTO, pagination.Meta, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*SalesStats, error)
}
