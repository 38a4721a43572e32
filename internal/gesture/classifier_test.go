package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/gayaku/internal/detector"
)

const epsilon = 1e-9

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(0)

	t.Run("pinch reports midpoint and flipped hand", func(t *testing.T) {
		hand := detector.PinchLandmarks(0.3, 0.5, "Left")
		got := c.Classify(&hand)

		if got.Kind != KindPinch {
			t.Fatalf("expected pinch, got %s", got.Kind)
		}
		if math.Abs(got.Position.X-0.3) > epsilon || math.Abs(got.Position.Y-0.5) > epsilon {
			t.Errorf("expected position (0.3, 0.5), got %v", got.Position)
		}
		if got.Hand != "right" {
			t.Errorf("expected camera-left hand to read as right, got %q", got.Hand)
		}
	})

	t.Run("open palm reports wrist", func(t *testing.T) {
		hand := detector.OpenPalmLandmarks()
		got := c.Classify(&hand)

		if got.Kind != KindOpenPalm {
			t.Fatalf("expected open palm, got %s", got.Kind)
		}
		if got.Position.X != 0.5 || got.Position.Y != 0.8 {
			t.Errorf("expected wrist position (0.5, 0.8), got %v", got.Position)
		}
		if got.Hand != "left" {
			t.Errorf("expected camera-right hand to read as left, got %q", got.Hand)
		}
	})

	t.Run("fist is neither", func(t *testing.T) {
		hand := detector.FistLandmarks()
		if got := c.Classify(&hand); got.Kind != KindNone {
			t.Errorf("expected none, got %s", got.Kind)
		}
	})

	t.Run("nil hand", func(t *testing.T) {
		if got := c.Classify(nil); got.Kind != KindNone {
			t.Errorf("expected none, got %s", got.Kind)
		}
	})

	t.Run("threshold is respected", func(t *testing.T) {
		strict := NewClassifier(0.001)
		hand := detector.PinchLandmarks(0.3, 0.5, "Right")
		if got := strict.Classify(&hand); got.Kind == KindPinch {
			t.Error("tips 0.01 apart should not pinch under a 0.001 threshold")
		}
	})
}

func TestClassifier_Scan(t *testing.T) {
	c := NewClassifier(DefaultPinchThreshold)

	t.Run("first pinching hand wins", func(t *testing.T) {
		hands := []detector.HandLandmarks{
			detector.FistLandmarks(),
			detector.PinchLandmarks(0.2, 0.4, "Left"),
			detector.PinchLandmarks(0.8, 0.6, "Right"),
		}

		pinch, palm := c.Scan(hands)
		if pinch == nil {
			t.Fatal("expected a pinch")
		}
		if math.Abs(pinch.Position.X-0.2) > epsilon {
			t.Errorf("expected first pinch at x=0.2, got %f", pinch.Position.X)
		}
		if palm != nil {
			t.Errorf("expected no open palm, got %+v", palm)
		}
	})

	t.Run("pinch and palm on separate hands", func(t *testing.T) {
		hands := []detector.HandLandmarks{
			detector.OpenPalmLandmarks(),
			detector.PinchLandmarks(0.6, 0.3, "Left"),
		}

		pinch, palm := c.Scan(hands)
		if pinch == nil || palm == nil {
			t.Fatalf("expected both gestures, got pinch=%v palm=%v", pinch, palm)
		}
	})

	t.Run("no hands", func(t *testing.T) {
		pinch, palm := c.Scan(nil)
		if pinch != nil || palm != nil {
			t.Error("expected nothing for no hands")
		}
	})
}

func TestClassifier_Sample(t *testing.T) {
	c := NewClassifier(0)

	t.Run("pinch with open palm", func(t *testing.T) {
		got := c.Sample([]detector.HandLandmarks{
			detector.OpenPalmLandmarks(),
			detector.PinchLandmarks(0.3, 0.5, "Left"),
		})
		if !got.Active || got.Position == nil || math.Abs(got.Position.X-0.3) > epsilon {
			t.Fatalf("expected active pinch at x=0.3, got %+v", got)
		}
		if got.Hand != "right" {
			t.Errorf("expected right hand, got %q", got.Hand)
		}
		if !got.OpenPalm || got.PalmPosition == nil {
			t.Errorf("expected open palm reported, got %+v", got)
		}
	})

	t.Run("no hands is inactive", func(t *testing.T) {
		got := c.Sample(nil)
		if got.Active || got.Position != nil || got.OpenPalm {
			t.Errorf("expected inactive sample, got %+v", got)
		}
	})
}
