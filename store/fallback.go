package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"loja-backend/dtos"
	"loja-backend/models"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type FallbackConfig struct {
	// FailureThreshold is the number of consecutive unavailable errors that
	// opens the breaker. Defaults to 3.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing the
	// primary again. Defaults to 30s.
	OpenTimeout time.Duration
}

// FallbackProductStore puts a circuit breaker in front of the primary product
// store. While the primary is unavailable, reads are served from and writes go
// to the in-memory secondary. Products written there stay pending until
// Reconcile copies them to the primary.
type FallbackProductStore struct {
	primary   ProductStore
	secondary *MemoryStore
	breaker   *gobreaker.CircuitBreaker[any]
	logger    *zap.Logger

	mu      sync.Mutex
	pending []string
}

func NewFallbackProductStore(primary ProductStore, secondary *MemoryStore, cfg FallbackConfig, logger *zap.Logger) *FallbackProductStore {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	f := &FallbackProductStore{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
	f.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "product-store",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Domain errors such as not found mean the primary answered.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return f
}

func (f *FallbackProductStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	v, err := f.breaker.Execute(func() (any, error) {
		return f.primary.FindProduct(ctx, id)
	})
	if err == nil {
		return v.(*models.Product), nil
	}
	if !errors.Is(err, ErrNotFound) && !degraded(err) {
		return nil, err
	}

	p, serr := f.secondary.FindProduct(ctx, id)
	if serr != nil {
		return nil, err
	}
	if degraded(err) {
		f.logger.Warn("serving product from fallback store", zap.String("product_id", id), zap.Error(err))
	}
	return p, nil
}

func (f *FallbackProductStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	v, err := f.breaker.Execute(func() (any, error) {
		return f.primary.ListProducts(ctx)
	})
	if err != nil {
		if !degraded(err) {
			return nil, err
		}
		f.logger.Warn("listing products from fallback store", zap.Error(err))
		return f.secondary.ListProducts(ctx)
	}

	products := v.([]models.Product)
	pending, err := f.secondary.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		seen[p.ID] = true
	}
	for _, p := range pending {
		if !seen[p.ID] {
			products = append(products, p)
		}
	}
	return products, nil
}

func (f *FallbackProductStore) InsertProduct(ctx context.Context, p *models.Product) error {
	_, err := f.breaker.Execute(func() (any, error) {
		return nil, f.primary.InsertProduct(ctx, p)
	})
	if err == nil || !degraded(err) {
		return err
	}

	if serr := f.secondary.InsertProduct(ctx, p); serr != nil {
		return serr
	}
	f.mu.Lock()
	f.pending = append(f.pending, p.ID)
	f.mu.Unlock()

	f.logger.Warn("product stored in fallback store", zap.String("product_id", p.ID), zap.Error(err))
	return nil
}

// Pending returns the number of products not yet copied to the primary.
func (f *FallbackProductStore) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Reconcile copies every pending product to the primary, keeping its id.
// Products that fail stay pending and are listed in the report.
func (f *FallbackProductStore) Reconcile(ctx context.Context) (dtos.SyncReport, error) {
	f.mu.Lock()
	ids := append([]string(nil), f.pending...)
	f.mu.Unlock()

	report := dtos.SyncReport{
		Pending:   len(ids),
		Errors:    []dtos.SyncError{},
		StartedAt: time.Now().UTC(),
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		p, err := f.secondary.FindProduct(ctx, id)
		if err != nil {
			f.dropPending(id)
			continue
		}

		_, err = f.breaker.Execute(func() (any, error) {
			return nil, f.primary.InsertProduct(ctx, p)
		})
		if err != nil && !errors.Is(err, ErrDuplicate) {
			report.Failed++
			report.Errors = append(report.Errors, dtos.SyncError{
				ProductID: id,
				Name:      p.Name,
				Message:   err.Error(),
			})
			continue
		}

		_ = f.secondary.DeleteProduct(ctx, id)
		f.dropPending(id)
		report.Flushed++
	}

	report.CompletedAt = time.Now().UTC()
	f.logger.Info("product reconciliation finished",
		zap.Int("pending", report.Pending),
		zap.Int("flushed", report.Flushed),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (f *FallbackProductStore) dropPending(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.pending {
		if existing == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
}

func degraded(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}
