package gesture

import (
	"math"

	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/detector"
	"github.com/ayusman/gayaku/internal/tracking"
)

// AnchorFromFace derives an AnchorSample from a face mesh. It returns nil
// when the ear landmarks are missing.
//
// Rotation is the nose tip's horizontal offset from the midpoint between the
// ears, as a fraction of half the face width, doubled and clamped to [-1,1].
// A degenerate face width yields rotation 0.
func AnchorFromFace(face *detector.FaceLandmarks) *tracking.AnchorSample {
	left, okL := face.At(detector.LeftTragus)
	right, okR := face.At(detector.RightTragus)
	if !okL || !okR {
		return nil
	}

	sample := &tracking.AnchorSample{
		LeftAnchor:  coords.Point{X: left.X, Y: left.Y},
		RightAnchor: coords.Point{X: right.X, Y: right.Y},
	}

	nose, ok := face.At(detector.NoseTip)
	halfWidth := (right.X - left.X) / 2
	if ok && math.Abs(halfWidth) > 1e-9 {
		offset := nose.X - (left.X + halfWidth)
		sample.Rotation = clamp(offset/halfWidth*2, -1, 1)
	}

	return sample
}

// AnchorFromFaces uses the first face only. No faces yields nil.
func AnchorFromFaces(faces []detector.FaceLandmarks) *tracking.AnchorSample {
	if len(faces) == 0 {
		return nil
	}
	return AnchorFromFace(&faces[0])
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
