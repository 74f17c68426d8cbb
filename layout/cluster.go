// Package layout groups fragmented text regions into renderable lines
// and fits text to its target box by glyph measurement.
package layout

import (
	"sort"
	"strings"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// Line is a horizontal run of regions rendered as one piece of text.
type Line struct {
	// Members are the source regions, ordered left to right.
	Members []model.Region

	// Text is the members' text joined with single spaces.
	Text string

	// BBox is the union of the member boxes.
	BBox model.BBox

	// Role and Style come from the leftmost member.
	Role  model.Role
	Style model.TextStyle
}

// Clusterer groups regions of renderable roles into lines.
type Clusterer struct {
	renderable model.RoleSet
}

// NewClusterer creates a Clusterer that considers only the given roles.
func NewClusterer(renderable model.RoleSet) *Clusterer {
	return &Clusterer{renderable: renderable}
}

// Cluster groups the renderable regions into lines. Within each role,
// regions are taken in ascending top-y order and joined greedily: a
// region joins the first open line whose FIRST member's vertical center
// is within half the average of the two heights (strict comparison).
// Comparing against the first member only, rather than a running
// average, keeps grouping stable when detectors emit fragments of very
// different heights; widening it to all members merges adjacent lines
// on dense designs.
func (c *Clusterer) Cluster(regions []model.Region) []Line {
	byRole := make(map[model.Role][]model.Region)
	var roles []model.Role
	for _, r := range regions {
		if !c.renderable.Has(r.Role) || r.Residue || r.Text == "" {
			continue
		}
		if _, seen := byRole[r.Role]; !seen {
			roles = append(roles, r.Role)
		}
		byRole[r.Role] = append(byRole[r.Role], r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	var lines []Line
	for _, role := range roles {
		lines = append(lines, clusterRole(byRole[role])...)
	}

	// Present lines top to bottom, then left to right.
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].BBox.Top() != lines[j].BBox.Top() {
			return lines[i].BBox.Top() < lines[j].BBox.Top()
		}
		return lines[i].BBox.Left() < lines[j].BBox.Left()
	})
	return lines
}

func clusterRole(regions []model.Region) []Line {
	sorted := make([]model.Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BBox.Top() < sorted[j].BBox.Top() })

	var groups [][]model.Region
	for _, r := range sorted {
		placed := false
		for i, group := range groups {
			if sameLine(group[0], r) {
				groups[i] = append(group, r)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []model.Region{r})
		}
	}

	lines := make([]Line, 0, len(groups))
	for _, group := range groups {
		lines = append(lines, finalizeLine(group))
	}
	return lines
}

// sameLine compares a candidate against a line's first member: the
// vertical centers must differ by strictly less than half the average
// of the two heights.
func sameLine(first, candidate model.Region) bool {
	delta := first.BBox.Center().Y - candidate.BBox.Center().Y
	if delta < 0 {
		delta = -delta
	}
	return delta < (first.BBox.Height+candidate.BBox.Height)/4
}

func finalizeLine(members []model.Region) Line {
	sort.SliceStable(members, func(i, j int) bool { return members[i].BBox.Left() < members[j].BBox.Left() })

	texts := make([]string, 0, len(members))
	bbox := members[0].BBox
	for _, m := range members {
		texts = append(texts, m.Text)
		bbox = bbox.Union(m.BBox)
	}

	return Line{
		Members: members,
		Text:    strings.Join(texts, " "),
		BBox:    bbox,
		Role:    members[0].Role,
		Style:   members[0].Style,
	}
}
