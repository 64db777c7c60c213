package catalog

import "slices"

// FilterType selects the matching rule a Filter applies.
type FilterType int

const (
	// FilterNone matches every challenge.
	FilterNone FilterType = iota
	// FilterContract matches challenges relevant to a single contract:
	// included by contract ID, placed at the contract's location, or
	// placed at its parent location.
	FilterContract
	// FilterContracts matches challenges included by any of a set of
	// contracts or placed at the given location.
	FilterContracts
	// FilterParentLocation matches challenges by parent location only.
	FilterParentLocation
)

// Filter selects the subset of a catalog relevant to a session or view.
type Filter struct {
	Type             FilterType
	ContractID       string
	ContractIDs      []string
	LocationID       string
	ParentLocationID string
}

// Match reports whether the challenge passes the filter.
func (f Filter) Match(c *Challenge) bool {
	switch f.Type {
	case FilterContract:
		if slices.Contains(c.InclusionContracts, f.ContractID) {
			return true
		}
		if len(c.InclusionContracts) > 0 {
			// Challenge is pinned to specific contracts and this isn't one.
			return false
		}
		return c.LocationID == f.LocationID || c.ParentLocationID == f.ParentLocationID

	case FilterContracts:
		for _, id := range f.ContractIDs {
			if slices.Contains(c.InclusionContracts, id) {
				return true
			}
		}
		if len(c.InclusionContracts) > 0 {
			return false
		}
		return c.LocationID == f.LocationID || c.ParentLocationID == f.ParentLocationID

	case FilterParentLocation:
		return c.ParentLocationID == f.ParentLocationID

	default:
		return true
	}
}
