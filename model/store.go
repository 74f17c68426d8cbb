package model

import "fmt"

// RegionStore is the normalized, immutable-per-run collection of
// detected regions together with the canonical reference dimensions
// every coordinate in the run is expressed against. Stores are
// validated on construction and never modified afterwards, so reads
// need no synchronization.
type RegionStore struct {
	regions   []Region
	refWidth  int
	refHeight int
}

// NewRegionStore validates the regions and builds a store. It returns
// an error when the reference dimensions are not positive, a region ID
// repeats, a bounding box has negative dimensions, or a role is outside
// the closed set.
func NewRegionStore(regions []Region, refWidth, refHeight int) (*RegionStore, error) {
	if refWidth <= 0 || refHeight <= 0 {
		return nil, fmt.Errorf("invalid reference dimensions %dx%d", refWidth, refHeight)
	}

	seen := make(map[string]bool, len(regions))
	for i, r := range regions {
		if r.ID == "" {
			return nil, fmt.Errorf("region %d: empty id", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("region %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true

		if !r.BBox.IsValid() {
			return nil, fmt.Errorf("region %q: negative bbox dimensions %vx%v", r.ID, r.BBox.Width, r.BBox.Height)
		}
		if r.Role < RoleUnknown || r.Role > RoleUIElement {
			return nil, fmt.Errorf("region %q: role out of range: %d", r.ID, int(r.Role))
		}
	}

	owned := make([]Region, len(regions))
	copy(owned, regions)

	return &RegionStore{
		regions:   owned,
		refWidth:  refWidth,
		refHeight: refHeight,
	}, nil
}

// Len returns the number of regions in the store.
func (s *RegionStore) Len() int {
	return len(s.regions)
}

// All returns the regions in input order. The returned slice is a copy;
// callers may reorder it freely.
func (s *RegionStore) All() []Region {
	out := make([]Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// ByRole returns the regions whose role is in the given set, in input order.
func (s *RegionStore) ByRole(roles RoleSet) []Region {
	var out []Region
	for _, r := range s.regions {
		if roles.Has(r.Role) {
			out = append(out, r)
		}
	}
	return out
}

// Get returns the region with the given ID.
func (s *RegionStore) Get(id string) (Region, bool) {
	for _, r := range s.regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// RefWidth returns the canonical reference image width.
func (s *RegionStore) RefWidth() int {
	return s.refWidth
}

// RefHeight returns the canonical reference image height.
func (s *RegionStore) RefHeight() int {
	return s.refHeight
}
