// Package snap implements the snapping engine shared by the interactive
// tools. One easing curve maps a raw distance to the correction applied at
// that distance; point-to-point, point-to-axis, point-to-segment, and
// gap-distance snapping all run through it, so every tool has the same feel.
package snap

// Config carries the snapping distances. All tools in one editor share one
// Config so the feel stays uniform.
type Config struct {
	// SnapRadius is the hard-snap distance: anything closer lands exactly
	// on the target.
	SnapRadius float64
	// EaseRadius is where the influence of a target fades to zero.
	EaseRadius float64
	// SnapJump is the correction applied right at SnapRadius; the ease
	// curve blends from this value down to zero at EaseRadius.
	SnapJump float64
	// Gap is the standard clearance kept between non-connected elements.
	Gap float64
	// EndpointBuffer excludes segment-intersection snap targets this close
	// to the segment's own endpoints; vertex snapping covers those.
	EndpointBuffer float64
	// MinDrawLen2 is the squared minimum length of a committed segment.
	MinDrawLen2 float64
}

// DefaultConfig returns the editor's stock distances.
func DefaultConfig() Config {
	return Config{
		SnapRadius:     10,
		EaseRadius:     40,
		SnapJump:       10,
		Gap:            30,
		EndpointBuffer: 5,
		MinDrawLen2:    15 * 15,
	}
}

// Ease maps the distance d to a target onto the correction applied toward
// it: the full distance inside SnapRadius, a quadratic tail falling from
// SnapJump to zero between SnapRadius and EaseRadius, nothing beyond.
func (cfg Config) Ease(d float64) float64 {
	if d < 0 {
		d = -d
	}
	switch {
	case d <= cfg.SnapRadius:
		return d
	case d < cfg.EaseRadius:
		t := (cfg.EaseRadius - d) / (cfg.EaseRadius - cfg.SnapRadius)
		return cfg.SnapJump * t * t
	default:
		return 0
	}
}
