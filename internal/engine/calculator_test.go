package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"boq_engine/internal/config"
	"boq_engine/internal/models"
)

type fakeResourceStore struct {
	specs []*models.ResourceSpecification
	err   error
}

func (f *fakeResourceStore) Query(_ context.Context, _ models.ResourceFilter) ([]*models.ResourceSpecification, error) {
	return f.specs, f.err
}

type fakeResultStore struct {
	inserted []*models.BoQLineItem
	err      error
}

func (f *fakeResultStore) InsertLineItems(_ context.Context, items []*models.BoQLineItem) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, items...)
	return nil
}

type fakeResolver struct {
	components models.PricingComponents
}

func (f *fakeResolver) Resolve(_ context.Context, _ *models.ResourceSpecification) (models.PricingComponents, error) {
	return f.components, nil
}

func estimatedComponents() models.PricingComponents {
	return models.PricingComponents{
		ComputeUnitPrice: 2*0.0475 + 7.5*0.0063,
		ComputeSource:    models.PriceSourceEstimated,
		StorageUnitPrice: 0.040,
		StorageSource:    models.PriceSourceEstimated,
	}
}

func continuousSpec(resourceID string) *models.ResourceSpecification {
	return &models.ResourceSpecification{
		ID:                 uuid.New(),
		ProjectID:          "proj-a",
		ResourceID:         resourceID,
		MachineType:        "n1-standard-2",
		VCPUCount:          2,
		MemoryGB:           7.5,
		DiskType:           "pd-standard",
		DiskSizeGB:         100,
		Region:             "us-central1",
		UsageDurationHours: 730,
		UsagePattern:       models.UsagePatternContinuous,
		PricingModel:       models.PricingModelOnDemand,
	}
}

func newCalculator(resources ResourceStore, results ResultStore) *Calculator {
	return NewCalculator(resources, &fakeResolver{components: estimatedComponents()}, results, config.DefaultPricingConfig(), zap.NewNop())
}

func TestCalculateEndToEndEstimate(t *testing.T) {
	results := &fakeResultStore{}
	calc := newCalculator(&fakeResourceStore{specs: []*models.ResourceSpecification{continuousSpec("vm-1")}}, results)

	result, err := calc.Calculate(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, result.LineItems, 1)

	item := result.LineItems[0]

	// (2*0.0475 + 7.5*0.0063) * 730
	assert.InDelta(t, 103.8425, item.ComputeCost, 1e-6)
	// 0.040 per GB-month * 100 GB * one month
	assert.InDelta(t, 4.0, item.StorageCost, 1e-6)
	assert.InDelta(t, 107.8425, item.Subtotal, 1e-6)

	// 730 continuous hours hit the sustained-use cap.
	assert.Equal(t, 30.0, item.SustainedUsePercent)
	assert.InDelta(t, 103.8425*0.30, item.TotalDiscount, 1e-6)
	assert.InDelta(t, item.Subtotal-item.TotalDiscount, item.TotalCost, 1e-6)
	assert.Less(t, item.TotalCost, item.Subtotal)

	assert.Equal(t, result.BoQID, item.BoQID)
	assert.Equal(t, 1, result.Processed)
	require.Len(t, results.inserted, 1)
}

func TestCalculateLogsRequester(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	calc := NewCalculator(
		&fakeResourceStore{specs: []*models.ResourceSpecification{continuousSpec("vm-1")}},
		&fakeResolver{components: estimatedComponents()},
		&fakeResultStore{},
		config.DefaultPricingConfig(),
		zap.New(core),
	)

	_, err := calc.Calculate(context.Background(), Request{RequestedBy: "billing-cron"})
	require.NoError(t, err)

	entries := logs.FilterMessage("calculation run completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "billing-cron", entries[0].ContextMap()["requested_by"])
	assert.EqualValues(t, 1, entries[0].ContextMap()["processed"])
}

func TestCalculateNoMatchingResources(t *testing.T) {
	results := &fakeResultStore{}
	calc := newCalculator(&fakeResourceStore{}, results)

	_, err := calc.Calculate(context.Background(), Request{
		Filter: models.ResourceFilter{ProjectIDs: []string{"absent"}},
	})
	require.ErrorIs(t, err, ErrNoMatchingResources)
	assert.Empty(t, results.inserted)
}

func TestCalculateQueryError(t *testing.T) {
	calc := newCalculator(&fakeResourceStore{err: errors.New("connection refused")}, &fakeResultStore{})

	_, err := calc.Calculate(context.Background(), Request{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatchingResources)
}

func TestCalculateSkipsFailedResource(t *testing.T) {
	bad := continuousSpec("vm-bad")
	bad.MachineType = ""

	results := &fakeResultStore{}
	calc := newCalculator(&fakeResourceStore{specs: []*models.ResourceSpecification{
		continuousSpec("vm-ok"),
		bad,
	}}, results)

	result, err := calc.Calculate(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "vm-bad", result.Skipped[0].ResourceID)
	assert.NotEmpty(t, result.Skipped[0].Reason)
	require.Len(t, results.inserted, 1)
	assert.Equal(t, "vm-ok", results.inserted[0].ResourceID)
}

func TestCalculatePersistFailureIsFatal(t *testing.T) {
	calc := newCalculator(
		&fakeResourceStore{specs: []*models.ResourceSpecification{continuousSpec("vm-1")}},
		&fakeResultStore{err: errors.New("deadlock detected")},
	)

	_, err := calc.Calculate(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persisting line items")
}

func TestCalculateTotalCostFloorsAtZero(t *testing.T) {
	cfg := config.DefaultPricingConfig()
	cfg.SpotDiscountPercent = 150

	spec := continuousSpec("vm-spot")
	spec.PricingModel = models.PricingModelSpot
	spec.DiskSizeGB = 0

	calc := NewCalculator(
		&fakeResourceStore{specs: []*models.ResourceSpecification{spec}},
		&fakeResolver{components: estimatedComponents()},
		&fakeResultStore{},
		cfg,
		zap.NewNop(),
	)

	result, err := calc.Calculate(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, result.LineItems, 1)
	assert.Zero(t, result.LineItems[0].TotalCost)
}

func TestCalculateAdditionalDisks(t *testing.T) {
	spec := continuousSpec("vm-disks")
	spec.AdditionalDisks = models.AdditionalDisks{
		{DiskType: "pd-ssd", SizeGB: 50},
	}

	components := estimatedComponents()
	components.AdditionalDiskPrices = []float64{0.170}

	calc := NewCalculator(
		&fakeResourceStore{specs: []*models.ResourceSpecification{spec}},
		&fakeResolver{components: components},
		&fakeResultStore{},
		config.DefaultPricingConfig(),
		zap.NewNop(),
	)

	result, err := calc.Calculate(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, result.LineItems, 1)

	// Primary 0.040*100 plus additional 0.170*50 over one month.
	assert.InDelta(t, 4.0+8.5, result.LineItems[0].StorageCost, 1e-6)
}

func TestSummarize(t *testing.T) {
	boqID := uuid.New()
	items := []*models.BoQLineItem{
		{ProjectID: "proj-a", Region: "us-central1", TotalCost: 100, TotalDiscount: 20},
		{ProjectID: "proj-a", Region: "europe-west1", TotalCost: 50, TotalDiscount: 5},
		{ProjectID: "proj-b", Region: "us-central1", TotalCost: 30, TotalDiscount: 0},
	}

	summary := Summarize(boqID, items, items[0].CreatedAt)

	assert.Equal(t, 3, summary.ResourceCount)
	assert.InDelta(t, 180.0, summary.TotalCost, 1e-9)
	assert.InDelta(t, 25.0, summary.TotalDiscount, 1e-9)
	assert.InDelta(t, 60.0, summary.AverageCost, 1e-9)
	assert.InDelta(t, 150.0, summary.CostByProject["proj-a"], 1e-9)
	assert.InDelta(t, 130.0, summary.CostByRegion["us-central1"], 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(uuid.New(), nil, time.Time{})
	assert.Zero(t, summary.ResourceCount)
	assert.Zero(t, summary.AverageCost)
}
