// Package pricing resolves unit prices for resource specifications against
// the active catalog, degrading to fixed reference estimates when no
// authoritative entry matches.
package pricing

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"boq_engine/internal/config"
	"boq_engine/internal/models"
)

// CatalogStore is the subset of the catalog store the resolver queries. All
// methods return active entries only, in no particular order; the resolver
// owns the tie-break policy.
type CatalogStore interface {
	// FindCompute returns compute entries matching the machine type exactly
	// or by family, in the given region or region-agnostic.
	FindCompute(ctx context.Context, machineType, machineFamily, region string, usage models.UsageType) ([]*models.CatalogEntry, error)

	// FindStorage returns storage entries for a disk type, in the given
	// region or region-agnostic.
	FindStorage(ctx context.Context, diskType, region string) ([]*models.CatalogEntry, error)

	// FindGPU returns GPU entries for a GPU type, in the given region or
	// region-agnostic.
	FindGPU(ctx context.Context, gpuType, region string, usage models.UsageType) ([]*models.CatalogEntry, error)
}

// Cache is an optional read-through cache of resolved components, flushed on
// catalog refresh. Implemented by storage.PriceCache.
type Cache interface {
	Get(ctx context.Context, key string) (*models.PricingComponents, bool)
	Set(ctx context.Context, key string, components *models.PricingComponents)
}

// Resolver resolves the priced components of one resource specification.
// Resolution never fails outright: a missing catalog match degrades to a
// known estimate instead of blocking the calculation.
type Resolver struct {
	catalog CatalogStore
	cache   Cache // may be nil
	cfg     config.PricingConfig
	log     *zap.Logger
}

func NewResolver(catalog CatalogStore, cache Cache, cfg config.PricingConfig, log *zap.Logger) *Resolver {
	return &Resolver{catalog: catalog, cache: cache, cfg: cfg, log: log}
}

// Resolve returns the unit prices for every component of the specification.
// The only error it returns is context cancellation; store failures are
// logged and degrade to the fallback tables.
func (r *Resolver) Resolve(ctx context.Context, spec *models.ResourceSpecification) (models.PricingComponents, error) {
	key := cacheKey(spec)
	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, key); ok {
			return *cached, nil
		}
	}

	var components models.PricingComponents

	if err := r.resolveCompute(ctx, spec, &components); err != nil {
		return components, err
	}
	if err := r.resolveStorage(ctx, spec, &components); err != nil {
		return components, err
	}
	if err := r.resolveGPU(ctx, spec, &components); err != nil {
		return components, err
	}
	if spec.HasExternalIP {
		components.NetworkUnitPrice = r.cfg.ExternalIPPricePerHour
	}

	if r.cache != nil {
		r.cache.Set(ctx, key, &components)
	}
	return components, nil
}

func (r *Resolver) resolveCompute(ctx context.Context, spec *models.ResourceSpecification, out *models.PricingComponents) error {
	entries, err := r.catalog.FindCompute(ctx, spec.MachineType, spec.MachineFamily(), spec.Region, spec.CatalogUsageType())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.log.Warn("catalog lookup failed, using estimate",
			zap.String("machine_type", spec.MachineType),
			zap.Error(err))
		entries = nil
	}

	if best := pickBest(entries, spec.MachineType, spec.Region); best != nil {
		out.ComputeUnitPrice = best.PricePerUnit
		out.ComputeSource = models.PriceSourceCatalog
		out.ComputeSKUID = best.SKUID
		return nil
	}

	// Heuristic estimate from the reference constants.
	out.ComputeUnitPrice = float64(spec.VCPUCount)*r.cfg.BaseVCPUPricePerHour +
		spec.MemoryGB*r.cfg.BaseMemoryPricePerHour
	out.ComputeSource = models.PriceSourceEstimated
	return nil
}

func (r *Resolver) resolveStorage(ctx context.Context, spec *models.ResourceSpecification, out *models.PricingComponents) error {
	price, source, err := r.storagePrice(ctx, spec.DiskType, spec.Region)
	if err != nil {
		return err
	}
	out.StorageUnitPrice = price
	out.StorageSource = source

	if len(spec.AdditionalDisks) == 0 {
		return nil
	}
	out.AdditionalDiskPrices = make([]float64, len(spec.AdditionalDisks))
	for i, disk := range spec.AdditionalDisks {
		p, _, err := r.storagePrice(ctx, disk.DiskType, spec.Region)
		if err != nil {
			return err
		}
		out.AdditionalDiskPrices[i] = p
	}
	return nil
}

func (r *Resolver) storagePrice(ctx context.Context, diskType, region string) (float64, models.PriceSource, error) {
	if diskType != "" {
		entries, err := r.catalog.FindStorage(ctx, diskType, region)
		if err != nil {
			if ctx.Err() != nil {
				return 0, "", ctx.Err()
			}
			r.log.Warn("catalog lookup failed, using estimate",
				zap.String("disk_type", diskType),
				zap.Error(err))
			entries = nil
		}
		if best := pickBest(entries, "", region); best != nil {
			return best.PricePerUnit, models.PriceSourceCatalog, nil
		}
	}

	if price, ok := r.cfg.StorageFallbackPrices[diskType]; ok {
		return price, models.PriceSourceEstimated, nil
	}
	return r.cfg.DefaultStoragePrice, models.PriceSourceEstimated, nil
}

func (r *Resolver) resolveGPU(ctx context.Context, spec *models.ResourceSpecification, out *models.PricingComponents) error {
	if spec.GPUType == "" || spec.GPUCount <= 0 {
		return nil
	}

	entries, err := r.catalog.FindGPU(ctx, spec.GPUType, spec.Region, spec.CatalogUsageType())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.log.Warn("catalog lookup failed, using estimate",
			zap.String("gpu_type", spec.GPUType),
			zap.Error(err))
		entries = nil
	}
	if best := pickBest(entries, "", spec.Region); best != nil {
		out.GPUUnitPrice = best.PricePerUnit
		out.GPUSource = models.PriceSourceCatalog
		return nil
	}

	if price, ok := r.cfg.GPUFallbackPrices[spec.GPUType]; ok {
		out.GPUUnitPrice = price
	} else {
		out.GPUUnitPrice = r.cfg.DefaultGPUPrice
	}
	out.GPUSource = models.PriceSourceEstimated
	return nil
}

// pickBest applies the tie-break contract: an exact machine type match beats
// a family match, and an exact region match beats a region-agnostic entry.
func pickBest(entries []*models.CatalogEntry, machineType, region string) *models.CatalogEntry {
	if len(entries) == 0 {
		return nil
	}

	ranked := make([]*models.CatalogEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return rank(ranked[i], machineType, region) < rank(ranked[j], machineType, region)
	})
	return ranked[0]
}

func rank(e *models.CatalogEntry, machineType, region string) int {
	score := 0
	if machineType != "" && e.MachineType != machineType {
		score += 2
	}
	if e.Region == nil || *e.Region != region {
		score++
	}
	return score
}

// cacheKey identifies one pricing-relevant view of a specification. vCPU
// count and memory are part of the key because the compute estimate is
// sized by them; disk sizes are not, since storage prices are per-unit.
func cacheKey(spec *models.ResourceSpecification) string {
	key := fmt.Sprintf("price:%s:%d:%g:%s:%s:%s:%s:%d",
		spec.MachineType, spec.VCPUCount, spec.MemoryGB,
		spec.Region, spec.CatalogUsageType(),
		spec.DiskType, spec.GPUType, boolToInt(spec.HasExternalIP))
	for _, d := range spec.AdditionalDisks {
		key += ":" + d.DiskType
	}
	return key
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
