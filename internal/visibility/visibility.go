// Package visibility fades anchored overlays out as the subject turns away.
package visibility

import "github.com/ayusman/gayaku/internal/tracking"

// Default fade parameters.
const (
	DefaultThreshold = 0.45
	DefaultFadeBand  = 0.15
)

// Model maps a rotation signal to per-side opacity. A side is fully visible
// until rotation comes within FadeBand of the Threshold that hides it, then
// ramps linearly to zero at the threshold.
type Model struct {
	Threshold float64
	FadeBand  float64
}

// Default returns the model with DefaultThreshold and DefaultFadeBand.
func Default() Model {
	return Model{Threshold: DefaultThreshold, FadeBand: DefaultFadeBand}
}

// Opacity returns the opacity in [0,1] for side at the given rotation.
// Negative rotation hides the left side, positive hides the right.
func (m Model) Opacity(rotation float64, side tracking.Side) float64 {
	var margin float64
	if side == tracking.Left {
		margin = rotation + m.Threshold
	} else {
		margin = m.Threshold - rotation
	}

	if m.FadeBand <= 0 {
		// Hard cutoff.
		if margin > 0 {
			return 1
		}
		return 0
	}
	return clamp01(margin / m.FadeBand)
}

// Visible reports whether side should be drawn at all.
func (m Model) Visible(rotation float64, side tracking.Side) bool {
	return m.Opacity(rotation, side) > 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
