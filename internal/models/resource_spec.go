package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

//
// Pricing enums (stored as TEXT in Postgres)
//

type UsagePattern string
type PricingModel string

const (
	UsagePatternContinuous   UsagePattern = "continuous"
	UsagePatternIntermittent UsagePattern = "intermittent"
	UsagePatternScheduled    UsagePattern = "scheduled"

	PricingModelOnDemand    PricingModel = "on-demand"
	PricingModelCUD1Year    PricingModel = "cud-1-year"
	PricingModelCUD3Year    PricingModel = "cud-3-year"
	PricingModelSpot        PricingModel = "spot"
	PricingModelPreemptible PricingModel = "preemptible"
)

// AdditionalDisk is a secondary disk attached to a resource.
type AdditionalDisk struct {
	DiskType    string  `json:"disk_type"`
	SizeGB      float64 `json:"size_gb"`
	Description string  `json:"description,omitempty"`
}

// AdditionalDisks is stored as a jsonb column.
type AdditionalDisks []AdditionalDisk

func (d AdditionalDisks) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *AdditionalDisks) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("AdditionalDisks: expected []byte, got %T", value)
	}
	if len(b) == 0 {
		*d = nil
		return nil
	}
	return json.Unmarshal(b, d)
}

//
// ResourceSpecification (resource_specifications table)
//

// ResourceSpecification describes one compute resource to be priced.
// Records are created by upstream intake; the engine only reads them.
type ResourceSpecification struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	ProjectID          string          `db:"project_id" json:"project_id"`
	ResourceID         string          `db:"resource_id" json:"resource_id"`
	MachineType        string          `db:"machine_type" json:"machine_type"`
	VCPUCount          int             `db:"vcpu_count" json:"vcpu_count"`
	MemoryGB           float64         `db:"memory_gb" json:"memory_gb"`
	DiskType           string          `db:"disk_type" json:"disk_type"`
	DiskSizeGB         float64         `db:"disk_size_gb" json:"disk_size_gb"`
	AdditionalDisks    AdditionalDisks `db:"additional_disks" json:"additional_disks,omitempty"`
	Region             string          `db:"region" json:"region"`
	UsageDurationHours float64         `db:"usage_duration_hours" json:"usage_duration_hours"`
	UsagePattern       UsagePattern    `db:"usage_pattern" json:"usage_pattern"`
	PricingModel       PricingModel    `db:"pricing_model" json:"pricing_model"`
	GPUType            string          `db:"gpu_type" json:"gpu_type,omitempty"`
	GPUCount           int             `db:"gpu_count" json:"gpu_count,omitempty"`
	HasExternalIP      bool            `db:"has_external_ip" json:"has_external_ip"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

// MachineFamily returns the token before the first dash of the machine type,
// e.g. "n1" for "n1-standard-2". Empty when no machine type is set.
func (r *ResourceSpecification) MachineFamily() string {
	if r.MachineType == "" {
		return ""
	}
	return strings.SplitN(r.MachineType, "-", 2)[0]
}

// CatalogUsageType maps the commercial pricing model onto the usage type
// catalog entries are classified under.
func (r *ResourceSpecification) CatalogUsageType() UsageType {
	switch r.PricingModel {
	case PricingModelSpot, PricingModelPreemptible:
		return UsageTypePreemptible
	case PricingModelCUD1Year, PricingModelCUD3Year:
		return UsageTypeCommitted
	default:
		return UsageTypeOnDemand
	}
}

// Validate reports whether the specification carries the fields the
// calculation needs. Invalid specifications are skipped, not fatal.
func (r *ResourceSpecification) Validate() error {
	if r.MachineType == "" {
		return errors.New("machine_type is required")
	}
	if r.UsageDurationHours <= 0 {
		return errors.New("usage_duration_hours must be positive")
	}
	if r.VCPUCount < 0 || r.MemoryGB < 0 || r.DiskSizeGB < 0 || r.GPUCount < 0 {
		return errors.New("negative quantity")
	}
	return nil
}
