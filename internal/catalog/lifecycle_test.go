package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boq_engine/internal/feed"
	"boq_engine/internal/models"
)

type fakeStore struct {
	deactivateErr error
	insertErr     error
	purgeErr      error

	deactivatedBefore time.Time
	inserted          []*models.CatalogEntry
	purgedBefore      time.Time
}

func (f *fakeStore) DeactivateBefore(_ context.Context, effectiveDate time.Time) (int64, error) {
	if f.deactivateErr != nil {
		return 0, f.deactivateErr
	}
	f.deactivatedBefore = effectiveDate
	return 3, nil
}

func (f *fakeStore) BulkInsert(_ context.Context, entries []*models.CatalogEntry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, entries...)
	return nil
}

func (f *fakeStore) PurgeInactiveBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.purgedBefore = cutoff
	return 1, nil
}

func sampleEntries(n int) []*models.CatalogEntry {
	entries := make([]*models.CatalogEntry, n)
	for i := range entries {
		entries[i] = &models.CatalogEntry{SKUID: "sku", Category: models.CategoryCompute, PricePerUnit: 0.1}
	}
	return entries
}

func TestLifecycleRefreshStampsEntries(t *testing.T) {
	store := &fakeStore{}
	lc := NewLifecycle(store, 90*24*time.Hour, zap.NewNop())

	effectiveDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := lc.Refresh(context.Background(), sampleEntries(2), effectiveDate)
	require.NoError(t, err)

	assert.Equal(t, effectiveDate, store.deactivatedBefore)
	require.Len(t, store.inserted, 2)
	for _, e := range store.inserted {
		assert.Equal(t, effectiveDate, e.EffectiveDate)
		assert.True(t, e.IsActive)
	}
	assert.WithinDuration(t, time.Now().UTC().Add(-90*24*time.Hour), store.purgedBefore, time.Minute)
}

func TestLifecycleDeactivateFailureIsNonFatal(t *testing.T) {
	store := &fakeStore{deactivateErr: errors.New("lock timeout")}
	lc := NewLifecycle(store, 0, zap.NewNop())

	err := lc.Refresh(context.Background(), sampleEntries(1), time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, store.inserted, 1)
}

func TestLifecycleInsertFailureIsFatal(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("connection reset")}
	lc := NewLifecycle(store, 0, zap.NewNop())

	err := lc.Refresh(context.Background(), sampleEntries(1), time.Now().UTC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert catalog generation")
}

func TestLifecyclePurgeFailureIsIgnored(t *testing.T) {
	store := &fakeStore{purgeErr: errors.New("disk full")}
	lc := NewLifecycle(store, 0, zap.NewNop())

	err := lc.Refresh(context.Background(), sampleEntries(1), time.Now().UTC())
	require.NoError(t, err)
}

type fakePriceCache struct {
	invalidations int
	err           error
}

func (f *fakePriceCache) InvalidateAll(_ context.Context) error {
	f.invalidations++
	return f.err
}

func feedSKU(id, description string, nanos int32, regions ...string) feed.SKU {
	return feed.SKU{
		SKUID:       id,
		Description: description,
		UsageUnit:   "h",
		Regions:     regions,
		Tiers: []feed.PricingTier{
			{Price: feed.UnitPrice{Nanos: nanos, CurrencyCode: "USD"}},
		},
	}
}

func TestRefresherExpandsRegions(t *testing.T) {
	source := feed.NewStaticSource([]feed.SKU{
		feedSKU("SKU-1", "N1 Instance Core", 47500000, "us-central1", "europe-west1"),
		feedSKU("SKU-2", "SSD backed PD Capacity storage", 170000000, "global"),
		feedSKU("SKU-3", "Zero priced noise", 0),
	})
	store := &fakeStore{}
	cache := &fakePriceCache{}
	r := NewRefresher(source, NewLifecycle(store, 0, zap.NewNop()), cache, zap.NewNop())

	report, err := r.RefreshAt(context.Background(), time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// SKU-1 expands to two regional entries, SKU-2 stays global, SKU-3 drops.
	assert.Equal(t, 3, report.TotalRecords)
	require.Len(t, store.inserted, 3)

	regions := make(map[string]bool)
	for _, e := range store.inserted {
		if e.Region == nil {
			regions["global"] = true
		} else {
			regions[*e.Region] = true
		}
	}
	assert.True(t, regions["us-central1"])
	assert.True(t, regions["europe-west1"])
	assert.True(t, regions["global"])

	assert.Equal(t, []string{"compute", "storage"}, report.Categories)
	assert.Equal(t, 1, cache.invalidations)
}

func TestRefresherRegionalClonesGetDistinctIDs(t *testing.T) {
	source := feed.NewStaticSource([]feed.SKU{
		feedSKU("SKU-1", "N1 Instance Core", 47500000, "us-central1", "europe-west1"),
	})
	store := &fakeStore{}
	r := NewRefresher(source, NewLifecycle(store, 0, zap.NewNop()), nil, zap.NewNop())

	_, err := r.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, store.inserted, 2)
	assert.NotEqual(t, store.inserted[0].ID, store.inserted[1].ID)
}

func TestRefresherCacheFailureDoesNotFailRefresh(t *testing.T) {
	source := feed.NewStaticSource([]feed.SKU{
		feedSKU("SKU-1", "N1 Instance Core", 47500000),
	})
	cache := &fakePriceCache{err: errors.New("redis down")}
	r := NewRefresher(source, NewLifecycle(&fakeStore{}, 0, zap.NewNop()), cache, zap.NewNop())

	_, err := r.Refresh(context.Background())
	require.NoError(t, err)
}

type failingSource struct{}

func (failingSource) FetchSKUs(context.Context) ([]feed.SKU, error) {
	return nil, errors.New("billing API unreachable")
}

func TestRefresherFeedFailure(t *testing.T) {
	r := NewRefresher(failingSource{}, NewLifecycle(&fakeStore{}, 0, zap.NewNop()), nil, zap.NewNop())

	_, err := r.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing feed unavailable")
}
