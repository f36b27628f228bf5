package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svelazco/storeflow-backend/internal/availability"
	"github.com/svelazco/storeflow-backend/internal/listing"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

// failingStore simulates a relational store whose backend died after the
// last successful probe.
type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) List(ctx context.Context, q listing.Query) ([]ProductDTO, pagination.Meta, error) {
	f.calls++
	return nil, pagination.Meta{}, f.err
}

func (f *failingStore) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.calls++
	return f.err
}

func (f *failingStore) SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductDTO, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) SetBranchStock(ctx context.Context, id uuid.UUID, branch string, quantity int) (*ProductDTO, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Stats(ctx context.Context) (*InventoryStats, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) LowStock(ctx context.Context, threshold int, params pagination.Params) ([]ProductDTO, pagination.Meta, error) {
	f.calls++
	return nil, pagination.Meta{}, f.err
}

func availableProber(t *testing.T) *availability.Prober {
	t.Helper()
	prober := availability.NewProber(okPinger{}, nil, nil, nil, time.Second)
	if err := prober.Probe(context.Background()); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	return prober
}

func TestServiceFallsBackOnRelationalFailure(t *testing.T) {
	repo := &failingStore{err: errors.New("connection reset")}
	memory := seededMemStore(t)
	prober := availableProber(t)

	svc := NewService(repo, memory, prober, nil, nil)

	list, err := svc.List(context.Background(), listing.Input{Search: "mouse"})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Mouse Inalámbrico", list.Products[0].Name)

	// The failure must have downgraded availability.
	assert.Equal(t, 1, repo.calls)
	assert.False(t, prober.Available())

	// Subsequent calls skip the relational store entirely.
	_, err = svc.List(context.Background(), listing.Input{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestServiceNotFoundDoesNotFallBack(t *testing.T) {
	repo := &failingStore{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	memory := seededMemStore(t)
	prober := availableProber(t)

	svc := NewService(repo, memory, prober, nil, nil)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, prober.Available(), "a not-found must not degrade availability")
	assert.Equal(t, 1, repo.calls)
}

func TestServiceUsesMemoryWhileUnavailable(t *testing.T) {
	repo := &failingStore{err: errors.New("should never be called")}
	memory := seededMemStore(t)
	prober := availability.NewProber(okPinger{}, nil, nil, nil, time.Second)

	svc := NewService(repo, memory, prober, nil, nil)

	list, err := svc.List(context.Background(), listing.Input{})
	require.NoError(t, err)
	assert.Len(t, list.Products, 3)
	assert.Equal(t, 0, repo.calls)
}

func TestServiceWithoutRelationalBackend(t *testing.T) {
	memory := NewMemoryStore()
	svc := NewService(nil, memory, nil, nil, nil)

	list, err := svc.List(context.Background(), listing.Input{})
	require.NoError(t, err)
	assert.Empty(t, list.Products)
	assert.Equal(t, 0, list.Pagination.TotalPages)
}

func TestServiceNormalizesHostileInput(t *testing.T) {
	memory := seededMemStore(t)
	svc := NewService(nil, memory, nil, nil, nil)

	list, err := svc.List(context.Background(), listing.Input{
		Page:      "-3",
		Limit:     "99999",
		SortBy:    "drop table products",
		SortOrder: "sideways",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Pagination.CurrentPage)
	assert.Equal(t, pagination.MaxLimit, list.Pagination.PerPage)
	assert.Equal(t, "name", list.Filters.SortBy)
	assert.Equal(t, listing.OrderAsc, list.Filters.SortOrder)
}

func TestServiceWritesGoToMemoryWhenDegraded(t *testing.T) {
	repo := &failingStore{err: errors.New("broken pipe")}
	memory := NewMemoryStore()
	prober := availableProber(t)

	svc := NewService(repo, memory, prober, nil, nil)

	created, err := svc.Create(context.Background(), CreateProductInput{Name: "Webcam HD"})
	require.NoError(t, err)
	assert.Equal(t, "Webcam HD", created.Name)
	assert.False(t, prober.Available())

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}
