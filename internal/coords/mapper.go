// Package coords converts normalized tracking coordinates into surface pixels.
package coords

import "math"

// Fallback surface dimensions used until the display reports its real size.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Point is a 2D point, either normalized [0,1] or in pixels depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Mode selects how the horizontal mirror is handled.
type Mode int

const (
	// PreMirrored flips x inside the mapper. Use it when the draw surface does
	// not mirror on its own, and whenever gesture and anchor positions are compared.
	PreMirrored Mode = iota
	// Direct maps x straight through. The draw surface must apply the mirror.
	Direct
)

// String returns the config name of the mode.
func (m Mode) String() string {
	if m == Direct {
		return "direct"
	}
	return "pre-mirrored"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	*m = ParseMode(string(b))
	return nil
}

// ParseMode converts a config name to a Mode. Unknown names map to PreMirrored.
func ParseMode(s string) Mode {
	if s == "direct" {
		return Direct
	}
	return PreMirrored
}

// Mapper maps normalized coordinates onto a surface of Width x Height pixels.
type Mapper struct {
	Width  float64
	Height float64
	Mode   Mode
}

// New returns a Mapper for the given surface size. Non-positive dimensions
// fall back to DefaultWidth x DefaultHeight.
func New(width, height int, mode Mode) Mapper {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return Mapper{Width: float64(width), Height: float64(height), Mode: mode}
}

// ToPixel converts a normalized point to pixel coordinates.
func (m Mapper) ToPixel(n Point) Point {
	x := n.X
	if m.Mode == PreMirrored {
		x = 1 - x
	}
	return Point{X: x * m.Width, Y: n.Y * m.Height}
}

// ToNormalized is the inverse of ToPixel.
func (m Mapper) ToNormalized(p Point) Point {
	if m.Width == 0 || m.Height == 0 {
		return Point{}
	}
	x := p.X / m.Width
	if m.Mode == PreMirrored {
		x = 1 - x
	}
	return Point{X: x, Y: p.Y / m.Height}
}

// Screen returns a mapper over the same surface in PreMirrored mode, the
// space the user actually sees. Proximity checks must run in this space.
func (m Mapper) Screen() Mapper {
	return Mapper{Width: m.Width, Height: m.Height, Mode: PreMirrored}
}

// ScreenSign is +1 when layout space and screen space share a horizontal
// direction and -1 when the surface flips layout space on display.
func (m Mapper) ScreenSign() float64 {
	if m.Mode == Direct {
		return -1
	}
	return 1
}
