// Package drag moves overlay offsets with a pinch gesture.
//
// A Machine is either Idle or Bound to one side. While idle, an active pinch
// binds to a side chosen by the configured Policy. While bound, the pinch
// displacement since binding is added to the side's starting offset, clamped,
// smoothed and written back as whole pixels. Releasing the pinch returns the
// machine to Idle.
package drag

import (
	"math"

	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/customize"
	"github.com/ayusman/gayaku/internal/placement"
	"github.com/ayusman/gayaku/internal/tracking"
)

// Defaults.
const (
	DefaultGrabRadius = 60.0
	DefaultSmoothing  = 0.4
)

// Policy selects how a new pinch picks its target side.
type Policy int

const (
	// Proximity binds to the closer anchor strictly within GrabRadius, or not
	// at all.
	Proximity Policy = iota
	// ScreenHalf binds by which half of the screen the pinch is in.
	ScreenHalf
)

// String returns the config name of the policy.
func (p Policy) String() string {
	if p == ScreenHalf {
		return "screen-half"
	}
	return "proximity"
}

// ParsePolicy converts a config name. Unknown names map to Proximity.
func ParsePolicy(s string) Policy {
	if s == "screen-half" {
		return ScreenHalf
	}
	return Proximity
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	*p = ParsePolicy(string(b))
	return nil
}

// State is the machine state.
type State int

const (
	Idle State = iota
	Bound
)

// String returns "idle" or "bound".
func (s State) String() string {
	if s == Bound {
		return "bound"
	}
	return "idle"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config tunes the machine.
type Config struct {
	Policy     Policy  `json:"policy"`
	GrabRadius float64 `json:"grab_radius"`
	Smoothing  float64 `json:"smoothing"`
}

// DefaultConfig returns proximity binding with a 60px radius and 0.4 smoothing.
func DefaultConfig() Config {
	return Config{
		Policy:     Proximity,
		GrabRadius: DefaultGrabRadius,
		Smoothing:  DefaultSmoothing,
	}
}

// Session is the ephemeral state of one continuous pinch. StartPinch is in
// screen pixels.
type Session struct {
	Target      tracking.Side    `json:"target"`
	StartPinch  coords.Point     `json:"start_pinch"`
	StartOffset customize.Offset `json:"start_offset"`
	Smoothed    customize.Offset `json:"smoothed"`
}

// Input is everything one tick hands to the machine.
type Input struct {
	Mapper  coords.Mapper
	Anchors *tracking.AnchorSample
	Gesture tracking.GestureSample
}

// Machine is the pinch drag state machine. It is not safe for concurrent
// use; the owning session drives it from its tick path.
type Machine struct {
	cfg     Config
	session *Session
}

// New creates an idle machine. Out-of-range settings fall back to defaults.
func New(cfg Config) *Machine {
	if !(cfg.GrabRadius > 0) {
		cfg.GrabRadius = DefaultGrabRadius
	}
	if !(cfg.Smoothing > 0 && cfg.Smoothing <= 1) {
		cfg.Smoothing = DefaultSmoothing
	}
	return &Machine{cfg: cfg}
}

// Config returns the settings in force.
func (m *Machine) Config() Config {
	return m.cfg
}

// SetPolicy changes the binding policy. An active drag is kept.
func (m *Machine) SetPolicy(p Policy) {
	m.cfg.Policy = p
}

// State returns Idle or Bound.
func (m *Machine) State() State {
	if m.session != nil {
		return Bound
	}
	return Idle
}

// Session returns a copy of the active drag, if any.
func (m *Machine) Session() (Session, bool) {
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// Cancel drops any active drag without writing to the customization.
func (m *Machine) Cancel() {
	m.session = nil
}

// Update advances the machine by one tick and reports whether it wrote a new
// offset into fit.
func (m *Machine) Update(in Input, fit *customize.Customization) bool {
	g := in.Gesture
	if !g.Active || g.Position == nil {
		m.session = nil
		return false
	}

	screen := in.Mapper.Screen()
	pinch := screen.ToPixel(*g.Position)

	if m.session == nil {
		if in.Anchors == nil {
			return false
		}
		side, ok := m.Target(in.Mapper, *in.Anchors, pinch, fit.State())
		if !ok {
			return false
		}
		start := fit.Offset(side)
		m.session = &Session{
			Target:      side,
			StartPinch:  pinch,
			StartOffset: start,
			Smoothed:    start,
		}
		return false
	}

	return m.drag(in.Mapper, pinch, fit)
}

// Target picks the side a pinch at the given screen pixel would bind to.
// It depends only on its arguments.
func (m *Machine) Target(mp coords.Mapper, anchors tracking.AnchorSample, pinch coords.Point, fit customize.State) (tracking.Side, bool) {
	if m.cfg.Policy == ScreenHalf {
		// A frontal subject's left anchor shows on the right half of the
		// mirrored screen.
		if pinch.X >= mp.Width/2 {
			return tracking.Left, true
		}
		return tracking.Right, true
	}

	best := tracking.Left
	bestDist := math.Inf(1)
	for _, side := range tracking.Sides {
		c := placement.ScreenCenter(mp, anchors, side, fit.Offset(side))
		if d := coords.Distance(pinch, c); d < bestDist {
			best, bestDist = side, d
		}
	}
	if bestDist >= m.cfg.GrabRadius {
		return tracking.Left, false
	}
	return best, true
}

func (m *Machine) drag(mp coords.Mapper, pinch coords.Point, fit *customize.Customization) bool {
	s := m.session
	delta := pinch.Sub(s.StartPinch)

	// Screen motion to layout motion: x flips when the surface mirrors.
	target := fit.ClampOffset(customize.Offset{
		X: s.StartOffset.X + delta.X*mp.ScreenSign(),
		Y: s.StartOffset.Y + delta.Y,
	})

	k := m.cfg.Smoothing
	s.Smoothed.X += (target.X - s.Smoothed.X) * k
	s.Smoothed.Y += (target.Y - s.Smoothed.Y) * k

	rounded := customize.Offset{X: math.Round(s.Smoothed.X), Y: math.Round(s.Smoothed.Y)}
	if rounded == fit.Offset(s.Target) {
		return false
	}
	return fit.SetOffset(s.Target, rounded)
}

// Zone is a grab target as the user sees it.
type Zone struct {
	Side   tracking.Side `json:"side"`
	Center coords.Point  `json:"center"`
	Radius float64       `json:"radius"`
}

// Zones returns the proximity grab zones in screen pixels. It is empty under
// the screen-half policy or without anchors.
func (m *Machine) Zones(mp coords.Mapper, anchors *tracking.AnchorSample, fit customize.State) []Zone {
	if m.cfg.Policy != Proximity || anchors == nil {
		return nil
	}
	zones := make([]Zone, 0, len(tracking.Sides))
	for _, side := range tracking.Sides {
		zones = append(zones, Zone{
			Side:   side,
			Center: placement.ScreenCenter(mp, *anchors, side, fit.Offset(side)),
			Radius: m.cfg.GrabRadius,
		})
	}
	return zones
}
