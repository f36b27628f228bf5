// Package availability owns the single source of truth for whether the
// relational backend is usable and which optional server-side routines exist.
package availability

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/svelazco/storeflow-backend/pkg/db"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/metrics"
)

// Optional Postgres routines the relational store can take advantage of.
const (
	RoutineProductsFiltered = "products_filtered"
	RoutineStockTotals      = "products_stock_totals"
)

// KnownRoutines lists every optional routine the prober checks for.
var KnownRoutines = []string{RoutineProductsFiltered, RoutineStockTotals}

// ErrNoBackend is returned by Probe when no relational backend was configured.
var ErrNoBackend = errors.New("no relational backend configured")

// Prober caches the last known backend state. Available() is a cached
// judgment, not a live check: callers that hit a failure while acting on
// "available" report it through MarkUnavailable themselves.
type Prober struct {
	pinger  db.Pinger
	conn    *gorm.DB
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
	timeout time.Duration

	mu        sync.RWMutex
	available bool
	routines  map[string]bool
}

// NewProber builds a prober over the given connection. Both pinger and conn
// may be nil, in which case the backend is permanently unavailable.
func NewProber(pinger db.Pinger, conn *gorm.DB, logg *logger.Logger, m *metrics.EngineMetrics, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		pinger:   pinger,
		conn:     conn,
		logg:     logg,
		metrics:  m,
		timeout:  timeout,
		routines: map[string]bool{},
	}
}

// Probe runs a connectivity round-trip and, on success, re-detects the
// optional routines. A routine detection failure never fails the probe.
func (p *Prober) Probe(ctx context.Context) error {
	if p.pinger == nil {
		p.metrics.IncProbe("fail")
		return ErrNoBackend
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.pinger.Ping(ctx); err != nil {
		p.metrics.IncProbe("fail")
		p.setAvailable(false)
		if p.logg != nil {
			p.logg.Error(ctx, "backend probe failed", err)
		}
		return err
	}

	detected := map[string]bool{}
	for _, name := range KnownRoutines {
		exists, err := p.routineExists(ctx, name)
		if err != nil {
			if p.logg != nil {
				lctx := p.logg.WithField(ctx, "routine", name)
				p.logg.Warn(lctx, "routine detection failed, using generic path")
			}
			continue
		}
		detected[name] = exists
	}

	p.mu.Lock()
	p.available = true
	p.routines = detected
	p.mu.Unlock()

	p.metrics.IncProbe("ok")
	if p.logg != nil {
		ctx = p.logg.WithField(ctx, "routines", detected)
		p.logg.Info(ctx, "backend probe succeeded")
	}
	return nil
}

func (p *Prober) routineExists(ctx context.Context, name string) (bool, error) {
	if p.conn == nil {
		return false, ErrNoBackend
	}
	var exists bool
	err := p.conn.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = ?)", name).
		Scan(&exists).Error
	return exists, err
}

// Available returns the last known backend state.
func (p *Prober) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.available
}

// MarkUnavailable flips the cached state off after a live query failure.
// The state stays off until a subsequent successful Probe.
func (p *Prober) MarkUnavailable(ctx context.Context, err error) {
	p.mu.Lock()
	wasAvailable := p.available
	p.available = false
	p.mu.Unlock()

	if wasAvailable && p.logg != nil {
		p.logg.Error(ctx, "backend marked unavailable", err)
	}
}

// HasRoutine returns the last known presence of an optional routine.
func (p *Prober) HasRoutine(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.routines[name]
}

// MarkRoutineMissing downgrades a routine flag for the rest of the process
// lifetime; only a fresh Probe can recover it.
func (p *Prober) MarkRoutineMissing(ctx context.Context, name string) {
	p.mu.Lock()
	p.routines[name] = false
	p.mu.Unlock()

	if p.logg != nil {
		ctx = p.logg.WithField(ctx, "routine", name)
		p.logg.Warn(ctx, "routine downgraded, generic path in effect")
	}
}

// Watch periodically re-probes the backend while it is unavailable, using a
// capped fibonacci backoff for the probe attempts inside each interval.
func (p *Prober) Watch(ctx context.Context, interval, backoffBase, backoffCap time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	if backoffCap < backoffBase {
		backoffCap = interval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.Available() {
				continue
			}
			backoff := retry.WithMaxDuration(interval,
				retry.WithCappedDuration(backoffCap, retry.NewFibonacci(backoffBase)))
			_ = retry.Do(ctx, backoff, func(ctx context.Context) error {
				if err := p.Probe(ctx); err != nil {
					return retry.RetryableError(err)
				}
				return nil
			})
		}
	}
}

func (p *Prober) setAvailable(v bool) {
	p.mu.Lock()
	p.available = v
	p.mu.Unlock()
}
