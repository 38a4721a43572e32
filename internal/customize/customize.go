// Package customize holds the user-adjustable fit of the selected overlay:
// a scale multiplier and a pixel offset per side. Every write is clamped to
// the configured limits, so stored values are always in range.
package customize

import (
	"math"

	"github.com/ayusman/gayaku/internal/tracking"
)

// Default limits and starting values.
const (
	DefaultMinScale  = 0.3
	DefaultMaxScale  = 2.0
	DefaultScale     = 1.0
	DefaultMaxOffset = 50.0
	DefaultOffsetX   = 0.0
	DefaultOffsetY   = 15.0
)

// Offset is a pixel displacement from an anchor.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OffsetMode selects how the two sides' offsets relate.
type OffsetMode int

const (
	// Independent keeps a separate offset per side.
	Independent OffsetMode = iota
	// Mirrored keeps one shared offset: writing one side stores (-x, y) on
	// the other.
	Mirrored
)

// String returns the config name of the mode.
func (m OffsetMode) String() string {
	if m == Mirrored {
		return "mirrored"
	}
	return "independent"
}

// ParseOffsetMode converts a config name. Unknown names map to Independent.
func ParseOffsetMode(s string) OffsetMode {
	if s == "mirrored" {
		return Mirrored
	}
	return Independent
}

// MarshalText implements encoding.TextMarshaler.
func (m OffsetMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *OffsetMode) UnmarshalText(b []byte) error {
	*m = ParseOffsetMode(string(b))
	return nil
}

// Limits bounds scale and offsets. Offsets are bounded to
// [-MaxOffset, MaxOffset] on both axes.
type Limits struct {
	MinScale  float64 `json:"min_scale"`
	MaxScale  float64 `json:"max_scale"`
	MaxOffset float64 `json:"max_offset"`
}

// Config describes a fresh customization.
type Config struct {
	Limits        Limits     `json:"limits"`
	Scale         float64    `json:"scale"`
	DefaultOffset Offset     `json:"default_offset"`
	Mode          OffsetMode `json:"mode"`
}

// DefaultConfig returns offsets biased downward toward the ear lobe,
// independent per side, at unit scale.
func DefaultConfig() Config {
	return Config{
		Limits: Limits{
			MinScale:  DefaultMinScale,
			MaxScale:  DefaultMaxScale,
			MaxOffset: DefaultMaxOffset,
		},
		Scale:         DefaultScale,
		DefaultOffset: Offset{X: DefaultOffsetX, Y: DefaultOffsetY},
		Mode:          Independent,
	}
}

// State is a snapshot of a customization.
type State struct {
	Scale float64    `json:"scale"`
	Left  Offset     `json:"left"`
	Right Offset     `json:"right"`
	Mode  OffsetMode `json:"mode"`
}

// Offset returns the offset for side.
func (s State) Offset(side tracking.Side) Offset {
	if side == tracking.Right {
		return s.Right
	}
	return s.Left
}

// Update is a partial write from the UI. Nil fields are left unchanged.
type Update struct {
	Scale *float64    `json:"scale,omitempty"`
	Left  *Offset     `json:"left,omitempty"`
	Right *Offset     `json:"right,omitempty"`
	Mode  *OffsetMode `json:"mode,omitempty"`
}

// Customization is the per-session fit state. It is not safe for concurrent
// use; the owning session serializes access.
type Customization struct {
	limits  Limits
	initial State
	state   State
}

// New creates a customization from cfg. Invalid limits fall back to the
// defaults and the starting values are clamped into range.
func New(cfg Config) *Customization {
	l := cfg.Limits
	if !(l.MinScale > 0) || !(l.MaxScale >= l.MinScale) {
		l.MinScale, l.MaxScale = DefaultMinScale, DefaultMaxScale
	}
	if !(l.MaxOffset >= 0) || math.IsInf(l.MaxOffset, 0) {
		l.MaxOffset = DefaultMaxOffset
	}

	scale := cfg.Scale
	if !(scale > 0) {
		scale = DefaultScale
	}

	c := &Customization{limits: l}
	c.initial = State{
		Scale: c.ClampScale(scale),
		Left:  c.ClampOffset(cfg.DefaultOffset),
		Right: c.ClampOffset(cfg.DefaultOffset),
		Mode:  cfg.Mode,
	}
	if cfg.Mode == Mirrored {
		c.initial.Right = mirror(c.initial.Left)
	}
	c.state = c.initial
	return c
}

// Limits returns the bounds in force.
func (c *Customization) Limits() Limits {
	return c.limits
}

// State returns a snapshot of the current values.
func (c *Customization) State() State {
	return c.state
}

// Scale returns the current scale multiplier.
func (c *Customization) Scale() float64 {
	return c.state.Scale
}

// Offset returns the current offset for side.
func (c *Customization) Offset(side tracking.Side) Offset {
	return c.state.Offset(side)
}

// Mode returns the current offset mode.
func (c *Customization) Mode() OffsetMode {
	return c.state.Mode
}

// SetScale stores v clamped to the scale limits and reports whether the
// stored value changed.
func (c *Customization) SetScale(v float64) bool {
	v = c.ClampScale(v)
	if v == c.state.Scale {
		return false
	}
	c.state.Scale = v
	return true
}

// SetOffset stores o, clamped, for side. In Mirrored mode the opposite side
// receives the mirrored value. Reports whether anything changed.
func (c *Customization) SetOffset(side tracking.Side, o Offset) bool {
	o = c.ClampOffset(o)
	changed := c.put(side, o)
	if c.state.Mode == Mirrored {
		if c.put(side.Opposite(), mirror(o)) {
			changed = true
		}
	}
	return changed
}

// Shared returns the single offset pair of the mirrored view, expressed as
// the left side's offset.
func (c *Customization) Shared() Offset {
	return c.state.Left
}

// SetShared writes o to the left side and its mirror to the right side,
// regardless of mode.
func (c *Customization) SetShared(o Offset) bool {
	o = c.ClampOffset(o)
	changed := c.put(tracking.Left, o)
	if c.put(tracking.Right, mirror(o)) {
		changed = true
	}
	return changed
}

// SetMode switches offset mode. Entering Mirrored mode re-derives the right
// side from the left.
func (c *Customization) SetMode(mode OffsetMode) bool {
	if mode == c.state.Mode {
		return false
	}
	c.state.Mode = mode
	if mode == Mirrored {
		c.put(tracking.Right, mirror(c.state.Left))
	}
	return true
}

// Apply performs a partial update. Mode is applied first so offsets written
// in the same update follow the new mode.
func (c *Customization) Apply(u Update) bool {
	changed := false
	if u.Mode != nil && c.SetMode(*u.Mode) {
		changed = true
	}
	if u.Scale != nil && c.SetScale(*u.Scale) {
		changed = true
	}
	if u.Left != nil && c.SetOffset(tracking.Left, *u.Left) {
		changed = true
	}
	if u.Right != nil && c.SetOffset(tracking.Right, *u.Right) {
		changed = true
	}
	return changed
}

// Restore loads a previously saved state, clamping it to the current limits.
func (c *Customization) Restore(st State) {
	c.state = State{
		Scale: c.ClampScale(st.Scale),
		Left:  c.ClampOffset(st.Left),
		Right: c.ClampOffset(st.Right),
		Mode:  st.Mode,
	}
	if st.Mode == Mirrored {
		c.state.Right = mirror(c.state.Left)
	}
}

// Reset restores the starting values.
func (c *Customization) Reset() {
	c.state = c.initial
}

// ClampScale bounds v to the scale limits. NaN maps to the starting scale.
func (c *Customization) ClampScale(v float64) float64 {
	if math.IsNaN(v) {
		v = c.initial.Scale
		if v == 0 {
			v = DefaultScale
		}
	}
	return clamp(v, c.limits.MinScale, c.limits.MaxScale)
}

// ClampOffset bounds both axes of o to the offset limits. NaN maps to 0.
func (c *Customization) ClampOffset(o Offset) Offset {
	m := c.limits.MaxOffset
	return Offset{X: clamp(zeroNaN(o.X), -m, m), Y: clamp(zeroNaN(o.Y), -m, m)}
}

func (c *Customization) put(side tracking.Side, o Offset) bool {
	p := &c.state.Left
	if side == tracking.Right {
		p = &c.state.Right
	}
	if *p == o {
		return false
	}
	*p = o
	return true
}

func mirror(o Offset) Offset {
	return Offset{X: 0 - o.X, Y: o.Y}
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
