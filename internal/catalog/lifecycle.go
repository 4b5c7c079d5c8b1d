package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"boq_engine/internal/models"
)

// Store is the catalog persistence the lifecycle manager depends on.
// Implemented by storage.CatalogRepository.
type Store interface {
	// DeactivateBefore marks active entries with an effective date before
	// the given one as inactive, returning the number of rows touched.
	DeactivateBefore(ctx context.Context, effectiveDate time.Time) (int64, error)

	// BulkInsert inserts a batch of entries, chunked to respect store-side
	// payload limits. Inserts are idempotent on (SKU, region, effective date).
	BulkInsert(ctx context.Context, entries []*models.CatalogEntry) error

	// PurgeInactiveBefore deletes inactive entries older than the cutoff,
	// returning the number of rows deleted.
	PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Lifecycle governs the transition between catalog generations as a
// three-phase saga: deactivate the previous generation, insert the new one,
// purge history past the retention window. The phases are not wrapped in one
// transaction; each has its own failure policy.
//
// Concurrent refreshes are not supported. The external scheduler guarantees
// at most one refresh runs at a time.
type Lifecycle struct {
	store     Store
	retention time.Duration
	log       *zap.Logger
}

// NewLifecycle creates a lifecycle manager. A non-positive retention falls
// back to 90 days.
func NewLifecycle(store Store, retention time.Duration, log *zap.Logger) *Lifecycle {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &Lifecycle{store: store, retention: retention, log: log}
}

// Refresh installs a new catalog generation stamped with effectiveDate.
//
// Phase failures follow the documented tolerance: a failed deactivation is
// logged and the refresh proceeds (stale-active entries are acceptable
// transiently), a failed insert aborts the refresh, a failed purge is logged
// and ignored.
func (l *Lifecycle) Refresh(ctx context.Context, entries []*models.CatalogEntry, effectiveDate time.Time) error {
	deactivated, err := l.store.DeactivateBefore(ctx, effectiveDate)
	if err != nil {
		l.log.Warn("failed to deactivate previous catalog generation",
			zap.Time("effective_date", effectiveDate),
			zap.Error(err))
	} else {
		l.log.Info("deactivated previous catalog generation",
			zap.Int64("entries", deactivated))
	}

	for _, e := range entries {
		e.EffectiveDate = effectiveDate
		e.IsActive = true
	}
	if err := l.store.BulkInsert(ctx, entries); err != nil {
		return fmt.Errorf("failed to insert catalog generation: %w", err)
	}

	cutoff := time.Now().UTC().Add(-l.retention)
	purged, err := l.store.PurgeInactiveBefore(ctx, cutoff)
	if err != nil {
		l.log.Warn("failed to purge expired catalog entries",
			zap.Time("cutoff", cutoff),
			zap.Error(err))
		return nil
	}
	if purged > 0 {
		l.log.Info("purged expired catalog entries", zap.Int64("entries", purged))
	}
	return nil
}
