package models

// PriceSource records where a resolved unit price came from.
type PriceSource string

const (
	// PriceSourceCatalog means an active catalog entry matched.
	PriceSourceCatalog PriceSource = "catalog"
	// PriceSourceEstimated means the resolver fell back to its reference
	// price tables.
	PriceSourceEstimated PriceSource = "estimated"
)

// PricingComponents carries the per-component unit prices resolved for one
// resource specification. Resolution never fails: components without an
// authoritative catalog match carry an estimated price instead.
type PricingComponents struct {
	// ComputeUnitPrice is the machine price per hour.
	ComputeUnitPrice float64     `json:"compute_unit_price"`
	ComputeSource    PriceSource `json:"compute_source"`
	ComputeSKUID     string      `json:"compute_sku_id,omitempty"`

	// StorageUnitPrice is the primary disk price per GB-month.
	StorageUnitPrice float64     `json:"storage_unit_price"`
	StorageSource    PriceSource `json:"storage_source"`

	// AdditionalDiskPrices holds per-GB-month prices for additional disks,
	// index-aligned with the specification's additional disk list.
	AdditionalDiskPrices []float64 `json:"additional_disk_prices,omitempty"`

	// GPUUnitPrice is the price per GPU-hour. Zero when no GPU requested.
	GPUUnitPrice float64     `json:"gpu_unit_price"`
	GPUSource    PriceSource `json:"gpu_source,omitempty"`

	// NetworkUnitPrice is the external-IP surcharge per hour. Zero when no
	// external IP is requested.
	NetworkUnitPrice float64 `json:"network_unit_price"`
}
