// Package feed consumes the raw pricing feed: a sequence of SKU records with
// free-text descriptions and fixed-point unit prices.
package feed

import "context"

// UnitPrice is a fixed-point price: whole units plus fractional nanos.
// The decimal value is units + nanos/1e9.
type UnitPrice struct {
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos"`
	CurrencyCode string `json:"currency_code"`
}

// PricingTier is one step of a raw tiered-rate ladder.
type PricingTier struct {
	StartUsageAmount float64   `json:"start_usage_amount"`
	Price            UnitPrice `json:"price"`
}

// SKU is one raw price-list record as delivered by the feed.
type SKU struct {
	SKUID       string        `json:"sku_id"`
	Description string        `json:"description"`
	UsageUnit   string        `json:"usage_unit"`
	Regions     []string      `json:"regions"`
	Tiers       []PricingTier `json:"tiers"`
}

// Source yields raw SKU records for catalog refresh.
type Source interface {
	FetchSKUs(ctx context.Context) ([]SKU, error)
}

// StaticSource serves a fixed SKU list. Used in tests and standalone
// deployments without feed credentials.
type StaticSource struct {
	SKUs []SKU
}

func NewStaticSource(skus []SKU) *StaticSource {
	return &StaticSource{SKUs: skus}
}

func (s *StaticSource) FetchSKUs(ctx context.Context) ([]SKU, error) {
	out := make([]SKU, len(s.SKUs))
	copy(out, s.SKUs)
	return out, nil
}
