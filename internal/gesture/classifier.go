// Package gesture turns raw detector landmarks into tracking samples: ear
// anchors from the face mesh, and the pinch and open-palm signals from hands.
package gesture

import (
	"math"
	"strings"

	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/detector"
	"github.com/ayusman/gayaku/internal/tracking"
)

// DefaultPinchThreshold is the thumb-to-index distance, in normalized image
// units, below which a hand counts as pinching.
const DefaultPinchThreshold = 0.05

// Kind is the classified hand pose.
type Kind string

const (
	KindNone     Kind = "none"
	KindPinch    Kind = "pinch"
	KindOpenPalm Kind = "open_palm"
)

// Classification describes one hand.
type Classification struct {
	Kind     Kind
	Position coords.Point // normalized, camera space
	Hand     string       // "left" or "right" from the user's point of view
}

// Classifier turns raw hand landmarks into gesture classifications.
type Classifier struct {
	pinchThreshold float64
}

// NewClassifier creates a Classifier. A non-positive threshold selects
// DefaultPinchThreshold.
func NewClassifier(pinchThreshold float64) *Classifier {
	if pinchThreshold <= 0 {
		pinchThreshold = DefaultPinchThreshold
	}
	return &Classifier{pinchThreshold: pinchThreshold}
}

// Classify inspects a single hand.
//
// A pinch is reported at the midpoint of thumb and index tips. An open palm
// needs every fingertip above its PIP joint and no pinch, and is reported at
// the wrist.
func (c *Classifier) Classify(hand *detector.HandLandmarks) Classification {
	if hand == nil {
		return Classification{Kind: KindNone}
	}

	thumb := hand.Points[detector.ThumbTip]
	index := hand.Points[detector.IndexTip]
	spread := math.Hypot(thumb.X-index.X, thumb.Y-index.Y)
	side := selfieHand(hand.Handedness)

	if spread < c.pinchThreshold {
		return Classification{
			Kind:     KindPinch,
			Position: coords.Point{X: (thumb.X + index.X) / 2, Y: (thumb.Y + index.Y) / 2},
			Hand:     side,
		}
	}

	if fingersExtended(hand) {
		wrist := hand.Points[detector.Wrist]
		return Classification{
			Kind:     KindOpenPalm,
			Position: coords.Point{X: wrist.X, Y: wrist.Y},
			Hand:     side,
		}
	}

	return Classification{Kind: KindNone, Hand: side}
}

// Scan classifies every hand and returns the first pinch and the first open
// palm found. Later hands of the same kind are ignored.
func (c *Classifier) Scan(hands []detector.HandLandmarks) (pinch, palm *Classification) {
	for i := range hands {
		cl := c.Classify(&hands[i])
		switch cl.Kind {
		case KindPinch:
			if pinch == nil {
				pinch = &cl
			}
		case KindOpenPalm:
			if palm == nil {
				palm = &cl
			}
		}
	}
	return pinch, palm
}

// Sample scans the hands into one GestureSample: the first pinch drives the
// drag and the first open palm is reported alongside it.
func (c *Classifier) Sample(hands []detector.HandLandmarks) tracking.GestureSample {
	pinch, palm := c.Scan(hands)

	sample := tracking.GestureSample{}
	if pinch != nil {
		pos := pinch.Position
		sample.Active = true
		sample.Position = &pos
		sample.Hand = pinch.Hand
	}
	if palm != nil {
		pos := palm.Position
		sample.OpenPalm = true
		sample.PalmPosition = &pos
	}
	return sample
}

func fingersExtended(hand *detector.HandLandmarks) bool {
	p := hand.Points
	return p[detector.IndexTip].Y < p[detector.IndexPIP].Y &&
		p[detector.MiddleTip].Y < p[detector.MiddlePIP].Y &&
		p[detector.RingTip].Y < p[detector.RingPIP].Y &&
		p[detector.PinkyTip].Y < p[detector.PinkyPIP].Y
}

// selfieHand flips MediaPipe's camera-perspective handedness for a mirrored view.
func selfieHand(handedness string) string {
	switch strings.ToLower(handedness) {
	case "left":
		return "right"
	case "right":
		return "left"
	default:
		return ""
	}
}
