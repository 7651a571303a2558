package circuit

import (
	"sort"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// crossingEndTol excludes intersections at segment endpoints: a segment
// ending exactly on another segment is a touch, not a crossing.
const crossingEndTol = 1e-9

// Crossings recomputes every non-adjacent segment intersection from the
// current geometry. Nothing is cached between frames; only the marked set
// persists.
func (c *Circuit) Crossings() []Crossing {
	ids := c.SegmentIDs()
	var out []Crossing
	for i, aID := range ids {
		a := c.segments[aID]
		for _, bID := range ids[i+1:] {
			b := c.segments[bID]
			if c.adjacent(a, b) {
				continue
			}
			if at, ok := c.crossingPoint(a, b); ok {
				out = append(out, Crossing{Pair: MakeSegPair(aID, bID), At: at})
			}
		}
	}
	return out
}

// CrossingAt finds the crossing nearest p within radius, false if none.
func (c *Circuit) CrossingAt(p geom.Vec, radius float64) (Crossing, bool) {
	best := Crossing{}
	bestD := radius
	found := false
	for _, x := range c.Crossings() {
		if d := geom.Dist(x.At, p); d <= bestD {
			best, bestD, found = x, d, true
		}
	}
	return best, found
}

// crossingPoint returns the interior intersection of two segments.
func (c *Circuit) crossingPoint(a, b *Segment) (geom.Vec, bool) {
	if a.Axis == b.Axis {
		// Parallel segments never cross; collinear overlap is a drawing
		// error handled elsewhere.
		return geom.Vec{}, false
	}
	a1, a2 := c.SegmentEnds(a)
	b1, b2 := c.SegmentEnds(b)
	t, u, ok := geom.SegmentParams(a1, a2, b1, b2)
	if !ok {
		return geom.Vec{}, false
	}
	if t < crossingEndTol || t > 1-crossingEndTol || u < crossingEndTol || u > 1-crossingEndTol {
		return geom.Vec{}, false
	}
	return geom.Lerp(a1, a2, t), true
}

// adjacent reports whether two segments share an endpoint or one is
// attached to the other.
func (c *Circuit) adjacent(a, b *Segment) bool {
	if a.Start == b.Start || a.Start == b.End || a.End == b.Start || a.End == b.End {
		return true
	}
	for vid := range a.Attached {
		if vid == b.Start || vid == b.End {
			return true
		}
	}
	for vid := range b.Attached {
		if vid == a.Start || vid == a.End {
			return true
		}
	}
	return false
}

// MarkCrossing pins a crossing by segment-pair identity so it survives
// reframing and is persisted.
func (c *Circuit) MarkCrossing(a, b SegmentID) {
	if c.segments[a] == nil || c.segments[b] == nil || a == b {
		return
	}
	c.marked[MakeSegPair(a, b)] = struct{}{}
}

// UnmarkCrossing releases a pinned crossing.
func (c *Circuit) UnmarkCrossing(a, b SegmentID) {
	delete(c.marked, MakeSegPair(a, b))
}

// IsMarked reports whether a crossing is pinned.
func (c *Circuit) IsMarked(a, b SegmentID) bool {
	_, ok := c.marked[MakeSegPair(a, b)]
	return ok
}

// MarkedPairs returns the pinned crossing pairs in normalized order.
func (c *Circuit) MarkedPairs() []SegPair {
	out := make([]SegPair, 0, len(c.marked))
	for p := range c.marked {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// SetCrossingStyle records a manual render override for a segment pair,
// mirrored on both segments.
func (c *Circuit) SetCrossingStyle(a, b SegmentID, style CrossingStyle) {
	sa := c.segments[a]
	sb := c.segments[b]
	if sa == nil || sb == nil || a == b {
		return
	}
	style.Manual = true
	sa.Crossings[b] = style
	sb.Crossings[a] = style
}

// ClearCrossingStyle removes a manual override from both segments.
func (c *Circuit) ClearCrossingStyle(a, b SegmentID) {
	if sa := c.segments[a]; sa != nil {
		delete(sa.Crossings, b)
	}
	if sb := c.segments[b]; sb != nil {
		delete(sb.Crossings, a)
	}
}
