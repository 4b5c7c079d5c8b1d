// Package parser turns free-text SKU descriptions into normalized attribute
// sets. Parsing is heuristic pattern matching, not a grammar: an ordered list
// of independent classifier rules is applied to one lower-cased copy of the
// description. Later rules may reclassify the category but never overwrite a
// field an earlier rule already extracted.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"boq_engine/internal/models"
)

// AttributeSet is the (possibly sparse) result of parsing one description.
type AttributeSet struct {
	Category           models.Category
	MachineFamily      string
	MachineType        string
	VCPUCount          int
	MemoryGB           float64
	DiskType           string
	GPUType            string
	UsageType          models.UsageType
	CommitmentTerm     string
	CommitmentDiscount float64
	NetworkTier        string
}

// machineFamilies is the fixed set of known machine family prefixes. A
// machine type is only captured when one of these is followed by a dash.
var machineFamilies = []string{
	"n1", "n2d", "n2", "n4", "e2", "c2d", "c2", "c3d", "c3", "c4",
	"m1", "m2", "m3", "a2", "a3", "g2", "t2d", "t2a",
}

var (
	machineTypeRe = regexp.MustCompile(`\b(` + strings.Join(machineFamilies, "|") + `)-[a-z0-9]+(?:-[a-z0-9]+)*\b`)
	vcpuRe        = regexp.MustCompile(`(\d+)\s*vcpu`)
	memoryRe      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*gb`)
	gpuModelRe    = regexp.MustCompile(`\b(nvidia|tesla|amd)[ -]([a-z]\d[a-z0-9]*)\b`)
)

// rule is one classifier. Rules run in order and share the parse state; each
// contributes fields without depending on the others.
type rule func(text string, attrs *AttributeSet)

var rules = []rule{
	detectMachineType,
	detectVCPU,
	detectMemory,
	detectDisk,
	detectGPU,
	detectUsageType,
	detectCommitment,
	detectNetworkTier,
}

// Parse extracts a normalized attribute set from a free-text SKU description.
// It is total: any input yields a result, defaulting to the compute category.
func Parse(description string) AttributeSet {
	text := strings.ToLower(description)

	attrs := AttributeSet{
		Category:  models.CategoryCompute,
		UsageType: models.UsageTypeOnDemand,
	}
	for _, r := range rules {
		r(text, &attrs)
	}
	return attrs
}

func detectMachineType(text string, attrs *AttributeSet) {
	m := machineTypeRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	attrs.MachineType = m[0]
	attrs.MachineFamily = m[1]
}

func detectVCPU(text string, attrs *AttributeSet) {
	m := vcpuRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	if n, err := strconv.Atoi(m[1]); err == nil {
		attrs.VCPUCount = n
	}
}

func detectMemory(text string, attrs *AttributeSet) {
	m := memoryRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	if v, err := strconv.ParseFloat(m[1], 64); err == nil {
		attrs.MemoryGB = v
	}
}

// detectDisk classifies persistent disk SKUs. "ssd" and "balanced" are
// unambiguous; "standard" only counts as a disk when a disk/storage token
// co-occurs, since plain "standard" also appears in network tier and machine
// type descriptions.
func detectDisk(text string, attrs *AttributeSet) {
	switch {
	case strings.Contains(text, "ssd"):
		attrs.DiskType = "pd-ssd"
	case strings.Contains(text, "balanced"):
		attrs.DiskType = "pd-balanced"
	case strings.Contains(text, "standard") &&
		(strings.Contains(text, "disk") || strings.Contains(text, "storage")):
		attrs.DiskType = "pd-standard"
	default:
		return
	}
	attrs.Category = models.CategoryStorage
}

func detectGPU(text string, attrs *AttributeSet) {
	if !strings.Contains(text, "gpu") && !strings.Contains(text, "nvidia") &&
		!strings.Contains(text, "tesla") {
		return
	}
	attrs.Category = models.CategoryGPU
	if m := gpuModelRe.FindStringSubmatch(text); m != nil {
		attrs.GPUType = m[1] + "-" + m[2]
	}
}

func detectUsageType(text string, attrs *AttributeSet) {
	if strings.Contains(text, "preemptible") || strings.Contains(text, "spot") {
		attrs.UsageType = models.UsageTypePreemptible
	}
}

func detectCommitment(text string, attrs *AttributeSet) {
	switch {
	case strings.Contains(text, "1-year") || strings.Contains(text, "1 year"):
		attrs.CommitmentTerm = "1-year"
		attrs.CommitmentDiscount = 25
	case strings.Contains(text, "3-year") || strings.Contains(text, "3 year"):
		attrs.CommitmentTerm = "3-year"
		attrs.CommitmentDiscount = 37
	default:
		return
	}
	attrs.UsageType = models.UsageTypeCommitted
}

func detectNetworkTier(text string, attrs *AttributeSet) {
	switch {
	case strings.Contains(text, "premium"):
		attrs.NetworkTier = "premium"
	case strings.Contains(text, "standard") &&
		(strings.Contains(text, "network") || strings.Contains(text, "egress") ||
			strings.Contains(text, "ip")):
		attrs.NetworkTier = "standard"
	default:
		return
	}
	attrs.Category = models.CategoryNetwork
}
