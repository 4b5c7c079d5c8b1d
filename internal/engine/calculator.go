// Package engine orchestrates a bill-of-quantity run: it fetches the resource
// specifications in scope, prices and discounts each one independently, and
// persists the resulting line items as a single batch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boq_engine/internal/config"
	"boq_engine/internal/discount"
	"boq_engine/internal/models"
)

// ErrNoMatchingResources is returned when the request filter selects no
// resource specifications at all. Callers surface it as a not-found outcome
// rather than a generic failure.
var ErrNoMatchingResources = errors.New("no resource specifications match the requested filter")

// ResourceStore loads the resource specifications a run covers. Implemented
// by storage.ResourceRepository.
type ResourceStore interface {
	Query(ctx context.Context, filter models.ResourceFilter) ([]*models.ResourceSpecification, error)
}

// ResultStore persists the line items of a run. Implemented by
// storage.BoQRepository.
type ResultStore interface {
	InsertLineItems(ctx context.Context, items []*models.BoQLineItem) error
}

// PriceResolver resolves unit prices for one specification. Implemented by
// pricing.Resolver.
type PriceResolver interface {
	Resolve(ctx context.Context, spec *models.ResourceSpecification) (models.PricingComponents, error)
}

// Request describes one calculation run.
type Request struct {
	Filter      models.ResourceFilter `json:"filter"`
	RequestedBy string                `json:"requested_by,omitempty"`
}

// SkippedResource records a specification the run could not price.
type SkippedResource struct {
	ResourceID string `json:"resource_id"`
	Reason     string `json:"reason"`
}

// Result is the outcome of one run. LineItems holds successfully processed
// resources only; skipped resources appear in Skipped and reduce the
// processed count, they never fail the run.
type Result struct {
	BoQID     uuid.UUID             `json:"boq_id"`
	Summary   models.BoQSummary     `json:"summary"`
	LineItems []*models.BoQLineItem `json:"results"`
	Processed int                   `json:"resources_processed"`
	Skipped   []SkippedResource     `json:"skipped,omitempty"`
}

// Calculator runs bill-of-quantity calculations.
type Calculator struct {
	resources ResourceStore
	resolver  PriceResolver
	results   ResultStore
	cfg       config.PricingConfig
	log       *zap.Logger
}

func NewCalculator(resources ResourceStore, resolver PriceResolver, results ResultStore, cfg config.PricingConfig, log *zap.Logger) *Calculator {
	return &Calculator{
		resources: resources,
		resolver:  resolver,
		results:   results,
		cfg:       cfg,
		log:       log,
	}
}

// Calculate prices every specification the filter selects. Per-resource
// failures are logged and skipped; a persistence failure is fatal to the run.
func (c *Calculator) Calculate(ctx context.Context, req Request) (*Result, error) {
	specs, err := c.resources.Query(ctx, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("querying resource specifications: %w", err)
	}
	if len(specs) == 0 {
		return nil, ErrNoMatchingResources
	}

	boqID := uuid.New()
	now := time.Now().UTC()

	result := &Result{BoQID: boqID}
	for _, spec := range specs {
		item, err := c.calculateOne(ctx, boqID, spec, now)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("skipping resource",
				zap.String("resource_id", spec.ResourceID),
				zap.String("boq_id", boqID.String()),
				zap.Error(err))
			result.Skipped = append(result.Skipped, SkippedResource{
				ResourceID: spec.ResourceID,
				Reason:     err.Error(),
			})
			continue
		}
		result.LineItems = append(result.LineItems, item)
	}
	result.Processed = len(result.LineItems)

	if len(result.LineItems) > 0 {
		if err := c.results.InsertLineItems(ctx, result.LineItems); err != nil {
			return nil, fmt.Errorf("persisting line items for boq %s: %w", boqID, err)
		}
	}

	result.Summary = Summarize(boqID, result.LineItems, now)
	c.log.Info("calculation run completed",
		zap.String("boq_id", boqID.String()),
		zap.String("requested_by", req.RequestedBy),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

func (c *Calculator) calculateOne(ctx context.Context, boqID uuid.UUID, spec *models.ResourceSpecification, now time.Time) (*models.BoQLineItem, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	prices, err := c.resolver.Resolve(ctx, spec)
	if err != nil {
		return nil, err
	}

	hours := spec.UsageDurationHours
	monthly := hours / c.cfg.HoursPerMonth

	item := &models.BoQLineItem{
		ID:             uuid.New(),
		BoQID:          boqID,
		ResourceSpecID: spec.ID,
		ProjectID:      spec.ProjectID,
		ResourceID:     spec.ResourceID,
		Region:         spec.Region,
		MachineType:    spec.MachineType,
		PricingModel:   spec.PricingModel,

		ComputeUnitPrice: prices.ComputeUnitPrice,
		StorageUnitPrice: prices.StorageUnitPrice,
		GPUUnitPrice:     prices.GPUUnitPrice,
		NetworkUnitPrice: prices.NetworkUnitPrice,
		ComputeSource:    prices.ComputeSource,

		CreatedAt: now,
	}

	item.ComputeCost = prices.ComputeUnitPrice * hours

	// Storage prices are per GB-month; scale to the requested duration.
	item.StorageCost = prices.StorageUnitPrice * spec.DiskSizeGB * monthly
	for i, disk := range spec.AdditionalDisks {
		if i < len(prices.AdditionalDiskPrices) {
			item.StorageCost += prices.AdditionalDiskPrices[i] * disk.SizeGB * monthly
		}
	}

	if spec.GPUCount > 0 {
		item.GPUCost = prices.GPUUnitPrice * float64(spec.GPUCount) * hours
	}
	if spec.HasExternalIP {
		item.NetworkCost = prices.NetworkUnitPrice * hours
	}

	item.DiscountResult = discount.Compute(spec, item.ComputeCost+item.GPUCost, c.cfg)

	item.Subtotal = item.ComputeCost + item.StorageCost + item.GPUCost + item.NetworkCost
	item.TotalDiscount = item.DiscountResult.TotalAmount()
	item.TotalCost = item.Subtotal - item.TotalDiscount
	if item.TotalCost < 0 {
		item.TotalCost = 0
	}

	return item, nil
}

// Summarize aggregates line items into run-level totals. It is derived from
// processed items only and can be recomputed from persisted rows.
func Summarize(boqID uuid.UUID, items []*models.BoQLineItem, generatedAt time.Time) models.BoQSummary {
	summary := models.BoQSummary{
		BoQID:         boqID,
		ResourceCount: len(items),
		CostByProject: make(map[string]float64),
		CostByRegion:  make(map[string]float64),
		GeneratedAt:   generatedAt,
	}

	for _, item := range items {
		summary.TotalCost += item.TotalCost
		summary.TotalDiscount += item.TotalDiscount
		summary.CostByProject[item.ProjectID] += item.TotalCost
		summary.CostByRegion[item.Region] += item.TotalCost
	}
	if len(items) > 0 {
		summary.AverageCost = summary.TotalCost / float64(len(items))
	}
	return summary
}
