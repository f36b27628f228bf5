package orders

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/svelazco/storeflow-backend/internal/listing"
	"github.com/svelazco/storeflow-backend/pkg/enums"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

// MemoryStore keeps orders in process memory with the same contract as the
// relational store. Records keep insertion order; creates append, status
// updates stay in place.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*OrderDTO
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) List(ctx context.Context, q listing.Query) ([]OrderDTO, pagination.Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*OrderDTO, 0, len(m.records))
	for _, rec := range m.records {
		if matchesQuery(*rec, q) {
			matched = append(matched, rec)
		}
	}

	sortRecords(matched, q)

	total := int64(len(matched))
	meta := pagination.NewMeta(q.Page, q.Limit, total)

	start := q.Params().Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]OrderDTO, 0, end-start)
	for _, rec := range matched[start:end] {
		page = append(page, *rec)
	}
	return page, meta, nil
}

func matchesQuery(o OrderDTO, q listing.Query) bool {
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		if !strings.Contains(strings.ToLower(o.CustomerName), search) &&
			!strings.Contains(strings.ToLower(o.Reference), search) {
			return false
		}
	}
	if status := enums.OrderStatus(q.Status); status.Valid() && o.Status != status {
		return false
	}
	return true
}

func sortRecords(recs []*OrderDTO, q listing.Query) {
	less := func(a, b OrderDTO) bool {
		switch q.SortBy {
		case "total":
			return a.Total.Cmp(b.Total) < 0
		case "status":
			return a.Status < b.Status
		case "customer":
			return strings.ToLower(a.CustomerName) < strings.ToLower(b.CustomerName)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if q.Desc() {
			return less(*recs[j], *recs[i])
		}
		return less(*recs[i], *recs[j])
	})
}

func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec := m.find(id)
	if rec == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := *rec
	return &dto, nil
}

func (m *MemoryStore) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	items := make([]OrderItemDTO, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, OrderItemDTO{
			ID:          uuid.New(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	rec := &OrderDTO{
		ID:           uuid.New(),
		Reference:    NewReference(),
		CustomerName: strings.TrimSpace(input.CustomerName),
		Status:       enums.OrderStatusPending,
		Total:        input.Total(),
		Items:        items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.records = append(m.records, rec)

	dto := *rec
	return &dto, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.find(id)
	if rec == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()

	dto := *rec
	return &dto, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, rec := range m.records {
		if rec.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (m *MemoryStore) Stats(ctx context.Context) (*SalesStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := SalesStats{ByStatus: map[string]int64{}, CompletedRevenue: decimal.Zero}
	for _, rec := range m.records {
		stats.TotalOrders++
		stats.ByStatus[rec.Status.String()]++
		if rec.Status == enums.OrderStatusCompleted {
			stats.CompletedRevenue = stats.CompletedRevenue.Add(rec.Total)
		}
	}
	return &stats, nil
}

// find expects the lock to be held.
func (m *MemoryStore) find(id uuid.UUID) *OrderDTO {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}
