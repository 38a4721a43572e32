// Package tracking defines the per-frame samples the try-on core consumes and
// the last-value slots that carry them from the detection pipeline.
package tracking

import (
	"fmt"

	"github.com/ayusman/gayaku/internal/coords"
)

// Side identifies one of the two anchors.
type Side int

const (
	Left Side = iota
	Right
)

// Sides lists both sides in draw order.
var Sides = [2]Side{Left, Right}

// String returns "left" or "right".
func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Right {
		return Left
	}
	return Right
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	side, ok := ParseSide(string(b))
	if !ok {
		return fmt.Errorf("unknown side %q", b)
	}
	*s = side
	return nil
}

// ParseSide converts "left"/"right" to a Side.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return Left, false
}

// AnchorSample is one tracking frame's anchor positions, normalized to [0,1]
// in camera (pre-mirror) space. Rotation is in [-1,1]; negative values turn
// toward the left side.
type AnchorSample struct {
	LeftAnchor  coords.Point `json:"left_anchor"`
	RightAnchor coords.Point `json:"right_anchor"`
	Rotation    float64      `json:"rotation"`
}

// Anchor returns the anchor for the given side.
func (a AnchorSample) Anchor(side Side) coords.Point {
	if side == Right {
		return a.RightAnchor
	}
	return a.LeftAnchor
}

// GestureSample is one tracking frame's pinch signal. Position is nil
// whenever Active is false.
type GestureSample struct {
	Active   bool          `json:"active"`
	Position *coords.Point `json:"position"`
	Hand     string        `json:"hand,omitempty"`

	// OpenPalm is reported independently of the pinch.
	OpenPalm     bool          `json:"open_palm"`
	PalmPosition *coords.Point `json:"palm_position,omitempty"`
}

// Inactive is the empty gesture sample.
var Inactive = GestureSample{}
