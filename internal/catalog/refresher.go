package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boq_engine/internal/feed"
	"boq_engine/internal/models"
)

// PriceCache is the resolver-side cache that must be flushed once a new
// catalog generation is live. Implemented by storage.PriceCache.
type PriceCache interface {
	InvalidateAll(ctx context.Context) error
}

// RefreshReport summarizes one completed catalog refresh.
type RefreshReport struct {
	EffectiveDate time.Time `json:"effective_date"`
	TotalRecords  int       `json:"total_records"`
	Categories    []string  `json:"categories"`
}

// Refresher runs a full catalog refresh: fetch the raw feed, normalize each
// SKU, expand entries per applicable region, and hand the generation to the
// lifecycle manager.
type Refresher struct {
	source    feed.Source
	lifecycle *Lifecycle
	cache     PriceCache // optional
	log       *zap.Logger
}

func NewRefresher(source feed.Source, lifecycle *Lifecycle, cache PriceCache, log *zap.Logger) *Refresher {
	return &Refresher{source: source, lifecycle: lifecycle, cache: cache, log: log}
}

// Refresh installs a new catalog generation stamped with the current time.
func (r *Refresher) Refresh(ctx context.Context) (*RefreshReport, error) {
	return r.RefreshAt(ctx, time.Now().UTC())
}

// RefreshAt installs a new catalog generation with an explicit effective
// date. Re-running with the same date is safe: inserts are idempotent on
// (SKU, region, effective date).
func (r *Refresher) RefreshAt(ctx context.Context, effectiveDate time.Time) (*RefreshReport, error) {
	raw, err := r.source.FetchSKUs(ctx)
	if err != nil {
		return nil, fmt.Errorf("pricing feed unavailable: %w", err)
	}

	var entries []*models.CatalogEntry
	categories := make(map[models.Category]bool)
	dropped := 0
	for _, sku := range raw {
		entry, ok := Normalize(sku)
		if !ok {
			dropped++
			continue
		}
		categories[entry.Category] = true
		entries = append(entries, expandRegions(entry, sku.Regions)...)
	}

	r.log.Info("normalized pricing feed",
		zap.Int("raw_skus", len(raw)),
		zap.Int("entries", len(entries)),
		zap.Int("dropped", dropped))

	if err := r.lifecycle.Refresh(ctx, entries, effectiveDate); err != nil {
		return nil, err
	}

	// Resolutions running mid-refresh may have cached prices from the old
	// generation; flush so new lookups see the new one. Failure only delays
	// convergence until the cache TTL expires.
	if r.cache != nil {
		if err := r.cache.InvalidateAll(ctx); err != nil {
			r.log.Warn("failed to invalidate price cache after refresh", zap.Error(err))
		}
	}

	names := make([]string, 0, len(categories))
	for c := range categories {
		names = append(names, string(c))
	}
	sort.Strings(names)

	return &RefreshReport{
		EffectiveDate: effectiveDate,
		TotalRecords:  len(entries),
		Categories:    names,
	}, nil
}

// expandRegions clones a normalized entry across the SKU's applicable
// regions. An empty region list, or one containing "global", yields a single
// region-agnostic entry.
func expandRegions(entry *models.CatalogEntry, regions []string) []*models.CatalogEntry {
	if len(regions) == 0 {
		return []*models.CatalogEntry{entry}
	}
	for _, region := range regions {
		if region == "global" {
			return []*models.CatalogEntry{entry}
		}
	}

	out := make([]*models.CatalogEntry, 0, len(regions))
	for _, region := range regions {
		clone := *entry
		clone.ID = uuid.New()
		r := region
		clone.Region = &r
		out = append(out, &clone)
	}
	return out
}
