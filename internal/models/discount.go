package models

// DiscountResult breaks a resource's discount down by family. At most one of
// the committed-use/spot families is non-zero for a given resource, and
// sustained-use only applies under on-demand pricing.
type DiscountResult struct {
	SustainedUsePercent float64 `db:"sustained_use_percent" json:"sustained_use_percent"`
	SustainedUseAmount  float64 `db:"sustained_use_amount" json:"sustained_use_amount"`
	CommittedUsePercent float64 `db:"committed_use_percent" json:"committed_use_percent"`
	CommittedUseAmount  float64 `db:"committed_use_amount" json:"committed_use_amount"`
	SpotPercent         float64 `db:"spot_percent" json:"spot_percent"`
	SpotAmount          float64 `db:"spot_amount" json:"spot_amount"`
}

// TotalAmount is the absolute discount across all families.
func (d DiscountResult) TotalAmount() float64 {
	return d.SustainedUseAmount + d.CommittedUseAmount + d.SpotAmount
}
