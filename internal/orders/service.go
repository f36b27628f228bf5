package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/svelazco/storeflow-backend/internal/availability"
	"github.com/svelazco/storeflow-backend/internal/listing"
	"github.com/svelazco/storeflow-backend/pkg/enums"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/metrics"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

const resourceName = "orders"

// Service routes order operations to the relational store while the backend
// is believed available and falls back to the in-memory store otherwise,
// mirroring the product service.
type Service struct {
	repo    Store
	memory  Store
	prober  *availability.Prober
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
}

// NewService wires the dual-store order service. repo may be nil when no
// relational backend was configured.
func NewService(repo Store, memory Store, prober *availability.Prober, logg *logger.Logger, m *metrics.EngineMetrics) *Service {
	return &Service{repo: repo, memory: memory, prober: prober, logg: logg, metrics: m}
}

func (s *Service) useRepo() bool {
	return s.repo != nil && s.prober != nil && s.prober.Available()
}

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
func (s *Service) List(ctx context.Context, input listing.Input) (*OrderList, error) {
	q := listing.Normalize(input, ListOptions())

	start := time.Now()
	dtos, meta, store, err := s.list(ctx, q)
	s.metrics.ObserveQuery(resourceName, store, time.Since(start))
	if err != nil {
		return nil, err
	}

	return &OrderList{Orders: dtos, Pagination: meta, Filters: q.Filters()}, nil
}

func (s *Service) list(ctx context.Context, q listing.Query) ([]OrderDTO, pagination.Meta, string, error) {
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

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if s.useRepo() {
		dto, err := s.repo.Get(ctx, id)
		if err == nil || pkgerrors.IsNotFound(err) {
			return dto, err
		}
		s.degrade(ctx, "get", err)
	}
	return s.memory.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if s.useRepo() {
		dto, err := s.repo.Create(ctx, input)
		if err == nil {
			return dto, nil
		}
		s.degrade(ctx, "create", err)
	}
	return s.memory.Create(ctx, input)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if s.useRepo() {
		dto, err := s.repo.UpdateStatus(ctx, id, status)
		if err == nil || pkgerrors.IsNotFound(err) || pkgerrors.CodeOf(err) == pkgerrors.CodeValidation {
			return dto, err
		}
		s.degrade(ctx, "update_status", err)
	}
	return s.memory.UpdateStatus(ctx, id, status)
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

func (s *Service) Stats(ctx context.Context) (*SalesStats, error) {
	if s.useRepo() {
		stats, err := s.repo.Stats(ctx)
		if err == nil {
			return stats, nil
		}
		s.degrade(ctx, "stats", err)
	}
	return s.memory.Stats(ctx)
}
