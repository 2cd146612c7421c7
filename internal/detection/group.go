package detection

import "sort"

// Stacked glyphs (= and ÷) are drawn as several strokes that never touch, so
// Segment reports them as separate components. GroupStacked joins them back
// into one component before classification.
const (
	barMinAspect     = 2.0 // width/height for a stroke to count as a bar
	stackMaxGapRatio = 0.6 // vertical gap relative to the wider bar
	stackMinOverlap  = 0.6 // horizontal overlap relative to the narrower piece
	barWidthRatio    = 2.0 // bars of an equals sign differ in width by at most this factor
	dotMaxWidthRatio = 0.5 // a division dot is at most this fraction of the bar width
	dotAspectMin     = 0.5 // a division dot is roughly round
	dotAspectMax     = 2.0
)

// GroupStacked merges bar-over-bar pairs (=) and dot-bar-dot stacks (÷).
//
// The merged component keeps the smallest ID of its parts, its pixel list is
// the sorted union and area and perimeter are summed. Components that do not
// take part in a stack are returned unchanged. The result is ordered by ID.
func GroupStacked(components []Component) []Component {
	if len(components) < 2 {
		return components
	}

	parent := make([]int, len(components))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	for i := range components {
		if !isBar(components[i].Bounds) {
			continue
		}
		bar := components[i].Bounds
		for j := range components {
			if i == j {
				continue
			}
			other := components[j].Bounds
			switch {
			case isBar(other) && j > i && barsStack(bar, other):
				union(i, j)
			case isDot(other, bar) && dotStacks(other, bar):
				union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range components {
		r := find(i)
		groups[r] = append(groups[r], i)
	}

	out := make([]Component, 0, len(groups))
	for root, members := range groups {
		if len(members) == 1 {
			out = append(out, components[root])
			continue
		}
		out = append(out, mergeComponents(components, members))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func isBar(b Bounds) bool {
	return float64(b.W) >= barMinAspect*float64(b.H)
}

func isDot(b, bar Bounds) bool {
	aspect := float64(b.W) / float64(b.H)
	return aspect >= dotAspectMin && aspect <= dotAspectMax &&
		float64(b.W) <= dotMaxWidthRatio*float64(bar.W)
}

// barsStack reports whether two bars sit one above the other like an equals sign.
func barsStack(a, b Bounds) bool {
	narrow, wide := a.W, b.W
	if narrow > wide {
		narrow, wide = wide, narrow
	}
	if float64(wide) > barWidthRatio*float64(narrow) {
		return false
	}
	if float64(horizontalOverlap(a, b)) < stackMinOverlap*float64(narrow) {
		return false
	}
	gap := verticalGap(a, b)
	return gap > 0 && float64(gap) <= stackMaxGapRatio*float64(wide)
}

// dotStacks reports whether dot sits centered above or below bar.
func dotStacks(dot, bar Bounds) bool {
	cx := dot.X + dot.W/2
	if cx < bar.X+bar.W/4 || cx > bar.X+bar.W-bar.W/4 {
		return false
	}
	gap := verticalGap(dot, bar)
	return gap > 0 && float64(gap) <= stackMaxGapRatio*float64(bar.W)
}

func horizontalOverlap(a, b Bounds) int {
	return max(0, min(a.X+a.W, b.X+b.W)-max(a.X, b.X))
}

// verticalGap returns the number of empty rows between a and b, or 0 when
// they overlap vertically.
func verticalGap(a, b Bounds) int {
	if a.Y > b.Y {
		a, b = b, a
	}
	return max(0, b.Y-(a.Y+a.H))
}

func mergeComponents(components []Component, members []int) Component {
	sort.Ints(members)
	merged := Component{ID: components[members[0]].ID, Bounds: components[members[0]].Bounds}
	for _, m := range members {
		c := components[m]
		merged.Bounds = merged.Bounds.Union(c.Bounds)
		merged.Pixels = append(merged.Pixels, c.Pixels...)
		merged.Area += c.Area
		merged.Perimeter += c.Perimeter
	}
	sort.Ints(merged.Pixels)
	return merged
}
