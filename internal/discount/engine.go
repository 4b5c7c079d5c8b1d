// Package discount implements the commercial discount rules: spot,
// committed-use, and sustained-use. Computation is pure; no I/O, no external
// state.
package discount

import (
	"math"

	"boq_engine/internal/config"
	"boq_engine/internal/models"
)

// Compute derives the discount for one resource. The base is the compute plus
// GPU cost; storage and network never attract discounts.
//
// Exactly one discount family applies per resource, selected by the pricing
// model: spot/preemptible and committed-use are flat percentages, on-demand
// qualifies for sustained use only.
func Compute(spec *models.ResourceSpecification, computeAndGPUCost float64, cfg config.PricingConfig) models.DiscountResult {
	var result models.DiscountResult

	switch spec.PricingModel {
	case models.PricingModelSpot, models.PricingModelPreemptible:
		result.SpotPercent = cfg.SpotDiscountPercent
		result.SpotAmount = computeAndGPUCost * cfg.SpotDiscountPercent / 100

	case models.PricingModelCUD1Year:
		result.CommittedUsePercent = cfg.CUD1YearDiscountPercent
		result.CommittedUseAmount = computeAndGPUCost * cfg.CUD1YearDiscountPercent / 100

	case models.PricingModelCUD3Year:
		result.CommittedUsePercent = cfg.CUD3YearDiscountPercent
		result.CommittedUseAmount = computeAndGPUCost * cfg.CUD3YearDiscountPercent / 100

	default: // on-demand
		percent := sustainedUsePercent(spec, cfg)
		if percent > 0 {
			result.SustainedUsePercent = percent
			result.SustainedUseAmount = computeAndGPUCost * percent / 100
		}
	}

	return result
}

// sustainedUsePercent grows in steps of SUDStepPercent for every SUDStepHours
// of continuous usage beyond the threshold, capped at SUDMaxPercent.
func sustainedUsePercent(spec *models.ResourceSpecification, cfg config.PricingConfig) float64 {
	if spec.UsagePattern != models.UsagePatternContinuous {
		return 0
	}
	if spec.UsageDurationHours <= cfg.SUDThresholdHours {
		return 0
	}
	steps := math.Floor((spec.UsageDurationHours - cfg.SUDThresholdHours) / cfg.SUDStepHours)
	return math.Min(cfg.SUDMaxPercent, steps*cfg.SUDStepPercent)
}
