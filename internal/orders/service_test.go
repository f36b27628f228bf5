package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svelazco/storeflow-backend/internal/availability"
	"github.com/svelazco/storeflow-backend/internal/listing"
	"github.com/svelazco/storeflow-backend/pkg/enums"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) List(ctx context.Context, q listing.Query) ([]OrderDTO, pagination.Meta, error) {
	f.calls++
	return nil, pagination.Meta{}, f.err
}

func (f *failingStore) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.calls++
	return f.err
}

func (f *failingStore) Stats(ctx context.Context) (*SalesStats, error) {
	f.calls++
	return nil, f.err
}

func TestServiceFallsBackOnRelationalFailure(t *testing.T) {
	repo := &failingStore{err: errors.New("connection reset")}
	memory := NewMemoryStore()
	sampleOrders(t, memory)

	prober := availability.NewProber(okPinger{}, nil, nil, nil, time.Second)
	require.NoError(t, prober.Probe(context.Background()))

	svc := NewService(repo, memory, prober, nil, nil)

	list, err := svc.List(context.Background(), listing.Input{})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 3)
	assert.False(t, prober.Available())
	assert.Equal(t, 1, repo.calls)

	// Degraded state skips the relational store until the next probe.
	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerName: "Diego Paz",
		Items:        []OrderItemInput{{ProductName: "Mouse", Quantity: 1, UnitPrice: decimal.NewFromFloat(19.99)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, "Diego Paz", created.CustomerName)
}

func TestServiceNotFoundDoesNotFallBack(t *testing.T) {
	repo := &failingStore{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	memory := NewMemoryStore()

	prober := availability.NewProber(okPinger{}, nil, nil, nil, time.Second)
	require.NoError(t, prober.Probe(context.Background()))

	svc := NewService(repo, memory, prober, nil, nil)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, prober.Available())
}
