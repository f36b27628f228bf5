package products

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/svelazco/storeflow-backend/internal/availability"
	"github.com/svelazco/storeflow-backend/internal/listing"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/metrics"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

const resourceName = "products"

// Service routes each operation to the relational store while the backend is
// believed available and falls back to the in-memory store otherwise. A
// relational failure (other than a not-found) downgrades availability and
// re-runs the operation on the memory store, so callers always get an answer.
type Service struct {
	repo    Store
	memory  Store
	prober  *availability.Prober
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
}

// NewService wires the dual-store product service. repo may be nil when no
// relational backend was configured.
func NewService(repo Store, memory Store, prober *availability.Prober, logg *logger.Logger, m *metrics.EngineMetrics) *Service {
	return &Service{repo: repo, memory: memory, prober: prober, logg: logg, metrics: m}
}

func (s *Service) useRepo() bool {
	return s.repo != nil && s.prober != nil && s.prober.Available()
}

// degrade records a relational failure and flips the cached availability so
// subsequent requests go straight to memory until the next probe.
func (s *Service) degrade(ctx context.Context, op string, err error) {
	if s.logg != nil {
		lctx := s.logg.WithField(ctx, "operation", op)
		s.logg.Error(lctx, "relational store failed, serving from memory", err)
	}
	if s.prober != nil {
		s.prober.MarkUnavailable(ctx, err)
	}
	s.metrics.IncFallback(resourceName)
}

// List normalizes the raw listing input and serves one page.
func (s *Service) List(ctx context.Context, input listing.Input) (*ProductList, error) {
	q := listing.Normalize(input, ListOptions())

	start := time.Now()
	dtos, meta, store, err := s.list(ctx, q)
	s.metrics.ObserveQuery(resourceName, store, time.Since(start))
	if err != nil {
		return nil, err
	}

	return &ProductList{Products: dtos, Pagination: meta, Filters: q.Filters()}, nil
}

func (s *Service) list(ctx context.Context, q listing.Query) ([]ProductDTO, pagination.Meta, string, error) {
	if s.useRepo() {
		dtos, meta, err := s.repo.List(ctx, q)
		if err == nil {
			return dtos, meta, "relational", nil
		}
		s.degrade(ctx, "list", err)
	}
	dtos, meta, err := s.memory.List(ctx, q)
	return dtos, meta, "memory", err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if s.useRepo() {
		dto, err := s.repo.Get(ctx, id)
		if err == nil || pkgerrors.IsNotFound(err) {
			return dto, err
		}
		s.degrade(ctx, "get", err)
	}
	return s.memory.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if s.useRepo() {
		dto, err := s.repo.Create(ctx, input)
		if err == nil {
			return dto, nil
		}
		s.degrade(ctx, "create", err)
	}
	return s.memory.Create(ctx, input)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if s.useRepo() {
		dto, err := s.repo.Update(ctx, id, input)
		if err == nil || pkgerrors.IsNotFound(err) {
			return dto, err
		}
		s.degrade(ctx, "update", err)
	}
	return s.memory.Update(ctx, id, input)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s.useRepo() {
		err := s.repo.Delete(ctx, id)
		if err == nil || pkgerrors.IsNotFound(err) {
			return err
		}
		s.degrade(ctx, "delete", err)
	}
	return s.memory.Delete(ctx, id)
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductDTO, error) {
	if s.useRepo() {
		dto, err := s.repo.SetActive(ctx, id, active)
		if err == nil || pkgerrors.IsNotFound(err) {
			return dto, err
		}
		s.degrade(ctx, "set_active", err)
	}
	return s.memory.SetActive(ctx, id, active)
}

func (s *Service) SetBranchStock(ctx context.Context, id uuid.UUID, branch string, quantity int) (*ProductDTO, error) {
	if s.useRepo() {
		dto, err := s.repo.SetBranchStock(ctx, id, branch, quantity)
		if err == nil || pkgerrors.IsNotFound(err) || pkgerrors.CodeOf(err) == pkgerrors.CodeValidation {
			return dto, err
		}
		s.degrade(ctx, "set_branch_stock", err)
	}
	return s.memory.SetBranchStock(ctx, id, branch, quantity)
}

func (s *Service) Stats(ctx context.Context) (*InventoryStats, error) {
	if s.useRepo() {
		stats, err := s.repo.Stats(ctx)
		if err == nil {
			return stats, nil
		}
		s.degrade(ctx, "stats", err)
	}
	return s.memory.Stats(ctx)
}

func (s *Service) LowStock(ctx context.Context, threshold int, params pagination.Params) ([]ProductDTO, pagination.Meta, error) {
	if s.useRepo() {
		dtos, meta, err := s.repo.LowStock(ctx, threshold, params)
		if err == nil {
			return dtos, meta, nil
		}
		s.degrade(ctx, "low_stock", err)
	}
	return s.memory.LowStock(ctx, threshold, params)
}
