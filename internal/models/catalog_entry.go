package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//
// Catalog enums (stored as TEXT in Postgres)
//

type Category string
type UsageType string

const (
	CategoryCompute Category = "compute"
	CategoryStorage Category = "storage"
	CategoryGPU     Category = "gpu"
	CategoryNetwork Category = "network"

	UsageTypeOnDemand    UsageType = "OnDemand"
	UsageTypePreemptible UsageType = "Preemptible"
	UsageTypeCommitted   UsageType = "Committed"
)

// TieredRate is one step of a usage-tiered price ladder.
type TieredRate struct {
	StartUsageAmount float64 `json:"start_usage_amount"`
	PricePerUnit     float64 `json:"price_per_unit"`
}

// TieredRates is stored as a jsonb column, ordered by ascending
// start_usage_amount.
type TieredRates []TieredRate

func (t TieredRates) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *TieredRates) Scan(value any) error {
	if value == nil {
		*t = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("TieredRates: expected []byte, got %T", value)
	}
	if len(b) == 0 {
		*t = nil
		return nil
	}
	return json.Unmarshal(b, t)
}

//
// CatalogEntry (catalog_entries table)
//

// CatalogEntry is one normalized, priced unit extracted from the raw pricing
// feed. Multiple rows may share a SKU across refresh generations; at most one
// is active per (SKU, region) at any time.
type CatalogEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SKUID       string    `db:"sku_id" json:"sku_id"`
	Description string    `db:"description" json:"description"`
	Category    Category  `db:"category" json:"category"`

	// Classification attributes, sparse by nature: the parser extracts what
	// the description yields and leaves the rest zero.
	MachineFamily  string    `db:"machine_family" json:"machine_family,omitempty"`
	MachineType    string    `db:"machine_type" json:"machine_type,omitempty"`
	VCPUCount      int       `db:"vcpu_count" json:"vcpu_count,omitempty"`
	MemoryGB       float64   `db:"memory_gb" json:"memory_gb,omitempty"`
	DiskType       string    `db:"disk_type" json:"disk_type,omitempty"`
	GPUType        string    `db:"gpu_type" json:"gpu_type,omitempty"`
	CommitmentTerm string    `db:"commitment_term" json:"commitment_term,omitempty"`
	NetworkTier    string    `db:"network_tier" json:"network_tier,omitempty"`
	UsageType      UsageType `db:"usage_type" json:"usage_type"`

	PricePerUnit float64 `db:"price_per_unit" json:"price_per_unit"`
	PricingUnit  string  `db:"pricing_unit" json:"pricing_unit"`
	Currency     string  `db:"currency" json:"currency"`

	// NULL region means the price applies to any region, matched at lower
	// priority than an exact regional entry.
	Region *string `db:"region" json:"region,omitempty"`

	EffectiveDate time.Time   `db:"effective_date" json:"effective_date"`
	IsActive      bool        `db:"is_active" json:"is_active"`
	TieredRates   TieredRates `db:"tiered_rates" json:"tiered_rates,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// IsGlobal reports whether the entry is region-agnostic.
func (e *CatalogEntry) IsGlobal() bool {
	return e.Region == nil
}

// MatchesRegion reports whether the entry prices resources in the given
// region, either exactly or as a global entry.
func (e *CatalogEntry) MatchesRegion(region string) bool {
	return e.Region == nil || *e.Region == region
}
