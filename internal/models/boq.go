package models

import (
	"time"

	"github.com/google/uuid"
)

//
// BoQLineItem (boq_line_items table)
//

// BoQLineItem is one resolved, priced, discounted resource. Line items are
// append-only: a new calculation run supersedes old ones under a new boq_id,
// existing rows are never updated.
type BoQLineItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	BoQID          uuid.UUID `db:"boq_id" json:"boq_id"`
	ResourceSpecID uuid.UUID `db:"resource_spec_id" json:"resource_spec_id"`

	ProjectID    string       `db:"project_id" json:"project_id"`
	ResourceID   string       `db:"resource_id" json:"resource_id"`
	Region       string       `db:"region" json:"region"`
	MachineType  string       `db:"machine_type" json:"machine_type"`
	PricingModel PricingModel `db:"pricing_model" json:"pricing_model"`

	// Per-component costs over the requested usage duration.
	ComputeCost float64 `db:"compute_cost" json:"compute_cost"`
	StorageCost float64 `db:"storage_cost" json:"storage_cost"`
	GPUCost     float64 `db:"gpu_cost" json:"gpu_cost"`
	NetworkCost float64 `db:"network_cost" json:"network_cost"`

	// Resolved unit prices the costs were derived from.
	ComputeUnitPrice float64     `db:"compute_unit_price" json:"compute_unit_price"`
	StorageUnitPrice float64     `db:"storage_unit_price" json:"storage_unit_price"`
	GPUUnitPrice     float64     `db:"gpu_unit_price" json:"gpu_unit_price"`
	NetworkUnitPrice float64     `db:"network_unit_price" json:"network_unit_price"`
	ComputeSource    PriceSource `db:"compute_source" json:"compute_source"`

	// Discount breakdown, flattened into the row by sqlx.
	DiscountResult

	Subtotal      float64 `db:"subtotal" json:"subtotal"`
	TotalDiscount float64 `db:"total_discount" json:"total_discount"`
	// TotalCost is floored at zero regardless of discount magnitude.
	TotalCost float64 `db:"total_cost" json:"total_cost"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

//
// BoQSummary
//

// BoQSummary aggregates the line items of one calculation run. It is derived
// from successfully processed items only and is recomputable from them, so it
// is returned to callers rather than persisted.
type BoQSummary struct {
	BoQID         uuid.UUID          `json:"boq_id"`
	ResourceCount int                `json:"resource_count"`
	TotalCost     float64            `json:"total_cost"`
	TotalDiscount float64            `json:"total_discount"`
	AverageCost   float64            `json:"average_cost"`
	CostByProject map[string]float64 `json:"cost_by_project"`
	CostByRegion  map[string]float64 `json:"cost_by_region"`
	GeneratedAt   time.Time          `json:"generated_at"`
}
