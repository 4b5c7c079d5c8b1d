// Package catalog builds and maintains the normalized pricing catalog: it
// turns raw feed SKUs into catalog entries and governs the transition between
// catalog generations.
package catalog

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"boq_engine/internal/feed"
	"boq_engine/internal/models"
	"boq_engine/internal/parser"
)

// Normalize converts one raw feed SKU into a catalog entry. It returns false
// when the record carries no usable price: no tiers at all, or a first-tier
// price of zero, which the feed uses for free-tier noise rather than a real
// price.
//
// The returned entry has no region; the refresh pipeline expands it across
// the SKU's applicable regions.
func Normalize(raw feed.SKU) (*models.CatalogEntry, bool) {
	if len(raw.Tiers) == 0 {
		return nil, false
	}

	tiers := make([]feed.PricingTier, len(raw.Tiers))
	copy(tiers, raw.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].StartUsageAmount < tiers[j].StartUsageAmount
	})

	// The headline price is the first tier's. The units+nanos conversion is
	// done in decimal so a large catalog does not accumulate float drift.
	headline := unitPriceDecimal(tiers[0].Price)
	if headline.IsZero() {
		return nil, false
	}

	attrs := parser.Parse(raw.Description)

	ladder := make(models.TieredRates, 0, len(tiers))
	for _, t := range tiers {
		ladder = append(ladder, models.TieredRate{
			StartUsageAmount: t.StartUsageAmount,
			PricePerUnit:     unitPriceDecimal(t.Price).InexactFloat64(),
		})
	}

	currency := tiers[0].Price.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	return &models.CatalogEntry{
		ID:             uuid.New(),
		SKUID:          raw.SKUID,
		Description:    raw.Description,
		Category:       attrs.Category,
		MachineFamily:  attrs.MachineFamily,
		MachineType:    attrs.MachineType,
		VCPUCount:      attrs.VCPUCount,
		MemoryGB:       attrs.MemoryGB,
		DiskType:       attrs.DiskType,
		GPUType:        attrs.GPUType,
		CommitmentTerm: attrs.CommitmentTerm,
		NetworkTier:    attrs.NetworkTier,
		UsageType:      attrs.UsageType,
		PricePerUnit:   headline.InexactFloat64(),
		PricingUnit:    raw.UsageUnit,
		Currency:       currency,
		TieredRates:    ladder,
	}, true
}

func unitPriceDecimal(p feed.UnitPrice) decimal.Decimal {
	return decimal.New(p.Units, 0).Add(decimal.New(int64(p.Nanos), -9))
}
