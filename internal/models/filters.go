package models

// ResourceFilter narrows which resource specifications a calculation run
// covers. Empty slices match everything; multiple fields combine with AND,
// values within a field with OR.
type ResourceFilter struct {
	ProjectIDs    []string       `json:"project_ids,omitempty"`
	ResourceIDs   []string       `json:"resource_ids,omitempty"`
	Regions       []string       `json:"regions,omitempty"`
	PricingModels []PricingModel `json:"pricing_models,omitempty"`
}

// IsEmpty reports whether the filter matches all specifications.
func (f ResourceFilter) IsEmpty() bool {
	return len(f.ProjectIDs) == 0 && len(f.ResourceIDs) == 0 &&
		len(f.Regions) == 0 && len(f.PricingModels) == 0
}
