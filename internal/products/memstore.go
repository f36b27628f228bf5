package products

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/svelazco/storeflow-backend/internal/listing"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

type memProduct struct {
	dto   ProductDTO
	stock map[string]int
}

// MemoryStore keeps the catalog in process memory. It answers the same
// contract as the relational store so the service can swap between them.
// Records keep insertion order; creates append, updates stay in place.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*memProduct
}

// NewMemoryStore builds an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// List filters, sorts and pages the catalog under a read lock.
func (m *MemoryStore) List(ctx context.Context, q listing.Query) ([]ProductDTO, pagination.Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*memProduct, 0, len(m.records))
	for _, rec := range m.records {
		if matchesQuery(rec.dto, q) {
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

	page := make([]ProductDTO, 0, end-start)
	for _, rec := range matched[start:end] {
		page = append(page, rec.dto)
	}
	return page, meta, nil
}

func matchesQuery(p ProductDTO, q listing.Query) bool {
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		if !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			return false
		}
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	switch q.Status {
	case "active":
		if !p.IsActive {
			return false
		}
	case "inactive":
		if p.IsActive {
			return false
		}
	}
	return true
}

func sortRecords(recs []*memProduct, q listing.Query) {
	less := func(a, b ProductDTO) bool {
		switch q.SortBy {
		case "price":
			return a.Price.Cmp(b.Price) < 0
		case "category":
			return strings.ToLower(a.Category) < strings.ToLower(b.Category)
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if q.Desc() {
			return less(recs[j].dto, recs[i].dto)
		}
		return less(recs[i].dto, recs[j].dto)
	})
}

// Get returns a copy of the stored product.
func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec := m.find(id)
	if rec == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := rec.dto
	return &dto, nil
}

// Create appends a new product with a fresh ID.
func (m *MemoryStore) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	rec := &memProduct{
		dto: ProductDTO{
			ID:          uuid.New(),
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			Category:    input.Category,
			Price:       input.Price,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		stock: map[string]int{},
	}
	if input.IsActive != nil {
		rec.dto.IsActive = *input.IsActive
	}
	for branch, qty := range input.Stock {
		rec.stock[branch] = qty
	}
	rec.refreshStock()

	m.records = append(m.records, rec)
	dto := rec.dto
	return &dto, nil
}

// Update mutates the provided fields in place.
func (m *MemoryStore) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.find(id)
	if rec == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if input.Name != nil {
		rec.dto.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		rec.dto.Description = *input.Description
	}
	if input.Category != nil {
		rec.dto.Category = *input.Category
	}
	if input.Price != nil {
		rec.dto.Price = *input.Price
	}
	if input.IsActive != nil {
		rec.dto.IsActive = *input.IsActive
	}
	rec.dto.UpdatedAt = time.Now().UTC()

	dto := rec.dto
	return &dto, nil
}

// Delete removes the product, preserving the order of the rest.
func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, rec := range m.records {
		if rec.dto.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

// SetActive toggles the listing status.
func (m *MemoryStore) SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.find(id)
	if rec == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	rec.dto.IsActive = active
	rec.dto.UpdatedAt = time.Now().UTC()

	dto := rec.dto
	return &dto, nil
}

// SetBranchStock upserts one branch quantity and recomputes the totals.
func (m *MemoryStore) SetBranchStock(ctx context.Context, id uuid.UUID, branch string, quantity int) (*ProductDTO, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.find(id)
	if rec == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	rec.stock[branch] = quantity
	rec.refreshStock()
	rec.dto.UpdatedAt = time.Now().UTC()

	dto := rec.dto
	return &dto, nil
}

// Stats aggregates the in-memory catalog.
func (m *MemoryStore) Stats(ctx context.Context) (*InventoryStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := InventoryStats{}
	for _, rec := range m.records {
		stats.TotalProducts++
		if rec.dto.IsActive {
			stats.ActiveProducts++
		} else {
			stats.InactiveProducts++
		}
		stats.TotalUnits += int64(rec.dto.Stock)
	}
	return &stats, nil
}

// LowStock pages products under the threshold, lowest stock first.
func (m *MemoryStore) LowStock(ctx context.Context, threshold int, params pagination.Params) ([]ProductDTO, pagination.Meta, error) {
	limit := pagination.NormalizeLimit(params.Limit, pagination.ReportLimit)
	page := pagination.NormalizePage(params.Page)

	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]ProductDTO, 0)
	for _, rec := range m.records {
		if rec.dto.Stock < threshold {
			matched = append(matched, rec.dto)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Stock != matched[j].Stock {
			return matched[i].Stock < matched[j].Stock
		}
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})

	total := int64(len(matched))
	meta := pagination.NewMeta(page, limit, total)

	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], meta, nil
}

// find expects the lock to be held.
func (m *MemoryStore) find(id uuid.UUID) *memProduct {
	for _, rec := range m.records {
		if rec.dto.ID == id {
			return rec
		}
	}
	return nil
}

// refreshStock recomputes the derived stock fields from the branch map.
func (rec *memProduct) refreshStock() {
	branches := make([]string, 0, len(rec.stock))
	for branch := range rec.stock {
		branches = append(branches, branch)
	}
	sort.Strings(branches)

	rec.dto.Stock = 0
	rec.dto.StockByBranch = make(map[string]int, len(branches))
	parts := make([]string, 0, len(branches))
	for _, branch := range branches {
		qty := rec.stock[branch]
		rec.dto.Stock += qty
		rec.dto.StockByBranch[branch] = qty
		parts = append(parts, branch+": "+strconv.Itoa(qty))
	}
	rec.dto.StockDetail = strings.Join(parts, ", ")
}
