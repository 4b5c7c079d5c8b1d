package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"boq_engine/internal/models"
)

func TestParseComputeDescriptions(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        AttributeSet
	}{
		{
			name:        "predefined instance core",
			description: "N1 Predefined Instance Core running in Americas",
			want: AttributeSet{
				Category:  models.CategoryCompute,
				UsageType: models.UsageTypeOnDemand,
			},
		},
		{
			name:        "machine type with vcpu and memory",
			description: "N2-standard-4 Instance with 4 vCPU and 16 GB RAM",
			want: AttributeSet{
				Category:      models.CategoryCompute,
				MachineFamily: "n2",
				MachineType:   "n2-standard-4",
				VCPUCount:     4,
				MemoryGB:      16,
				UsageType:     models.UsageTypeOnDemand,
			},
		},
		{
			name:        "preemptible instance",
			description: "Spot Preemptible E2 Instance Core running in EMEA",
			want: AttributeSet{
				Category:  models.CategoryCompute,
				UsageType: models.UsageTypePreemptible,
			},
		},
		{
			name:        "decimal memory size",
			description: "N1 Instance Ram running with 7.5 GB",
			want: AttributeSet{
				Category:  models.CategoryCompute,
				MemoryGB:  7.5,
				UsageType: models.UsageTypeOnDemand,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.description))
		})
	}
}

func TestParseStorageRequiresDiskTokenForStandard(t *testing.T) {
	// "standard" alone is not a disk: it also appears in machine type and
	// network tier descriptions.
	got := Parse("N2 Instance Core running in Americas")
	assert.Equal(t, models.CategoryCompute, got.Category)
	assert.Empty(t, got.DiskType)

	got = Parse("Standard Persistent Disk in Americas")
	assert.Equal(t, models.CategoryStorage, got.Category)
	assert.Equal(t, "pd-standard", got.DiskType)

	// "ssd" alone still maps to storage.
	got = Parse("SSD backed capacity in Frankfurt")
	assert.Equal(t, models.CategoryStorage, got.Category)
	assert.Equal(t, "pd-ssd", got.DiskType)

	got = Parse("Balanced PD Capacity")
	assert.Equal(t, "pd-balanced", got.DiskType)
}

func TestParseGPU(t *testing.T) {
	got := Parse("Nvidia Tesla T4 GPU running in Americas")
	assert.Equal(t, models.CategoryGPU, got.Category)
	assert.Equal(t, "tesla-t4", got.GPUType)

	got = Parse("Tesla V100 GPU attached to Spot Preemptible VMs")
	assert.Equal(t, models.CategoryGPU, got.Category)
	assert.Equal(t, "tesla-v100", got.GPUType)
	assert.Equal(t, models.UsageTypePreemptible, got.UsageType)
}

func TestParseCommitment(t *testing.T) {
	got := Parse("Commitment v1: N2 Cpu in Americas for 1 year")
	assert.Equal(t, models.UsageTypeCommitted, got.UsageType)
	assert.Equal(t, "1-year", got.CommitmentTerm)
	assert.Equal(t, 25.0, got.CommitmentDiscount)

	got = Parse("Commitment v1: Cpu in EMEA for 3-year term")
	assert.Equal(t, models.UsageTypeCommitted, got.UsageType)
	assert.Equal(t, "3-year", got.CommitmentTerm)
	assert.Equal(t, 37.0, got.CommitmentDiscount)
}

func TestParseNetworkTier(t *testing.T) {
	got := Parse("Network Internet Egress from Americas to Americas, Premium Tier")
	assert.Equal(t, models.CategoryNetwork, got.Category)
	assert.Equal(t, "premium", got.NetworkTier)

	got = Parse("Network Internet Standard Tier Egress from Americas")
	assert.Equal(t, models.CategoryNetwork, got.Category)
	assert.Equal(t, "standard", got.NetworkTier)
}

func TestParseIsTotal(t *testing.T) {
	// Any input yields an attribute set, never a failure.
	for _, s := range []string{"", "   ", "???", "completely unrelated text"} {
		got := Parse(s)
		assert.Equal(t, models.CategoryCompute, got.Category)
		assert.Equal(t, models.UsageTypeOnDemand, got.UsageType)
	}
}
