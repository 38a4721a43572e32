package placement

import (
	"math"
	"testing"

	"github.com/ayusman/gayaku/internal/catalog"
	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/customize"
	"github.com/ayusman/gayaku/internal/tracking"
)

const epsilon = 1e-6

func frontal() *tracking.AnchorSample {
	return &tracking.AnchorSample{
		LeftAnchor:  coords.Point{X: 0.35, Y: 0.5},
		RightAnchor: coords.Point{X: 0.65, Y: 0.5},
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestEngine_Place(t *testing.T) {
	e := NewEngine()
	m := coords.New(1280, 720, coords.PreMirrored)
	asset := catalog.Asset{ID: "pearl-drop", BaseScale: 1.2}
	fit := customize.New(customize.DefaultConfig()).State()

	layout := e.Place(m, frontal(), asset, fit)
	if len(layout.Rects) != 2 {
		t.Fatalf("expected 2 rects, got %d", len(layout.Rects))
	}

	left, ok := layout.For(tracking.Left)
	if !ok {
		t.Fatal("expected left rect")
	}

	// 80 * 1.2 * 1.0 = 96; anchor (0.65*1280, 360) = (832, 360); offset (0, 15).
	if !approx(left.Width, 96) || !approx(left.Height, 96) {
		t.Errorf("expected 96x96, got %fx%f", left.Width, left.Height)
	}
	if !approx(left.X, 832-48) || !approx(left.Y, 360-48+15) {
		t.Errorf("unexpected left origin (%f, %f)", left.X, left.Y)
	}
	if left.Opacity != 1 {
		t.Errorf("expected full opacity, got %f", left.Opacity)
	}
}

func TestEngine_PlaceAppliesScale(t *testing.T) {
	e := NewEngine()
	m := coords.New(1280, 720, coords.Direct)
	c := customize.New(customize.DefaultConfig())
	c.SetScale(0.5)

	layout := e.Place(m, frontal(), catalog.Asset{BaseScale: 2.0}, c.State())
	r, _ := layout.For(tracking.Right)

	if !approx(r.Width, 80) {
		t.Errorf("expected width 80, got %f", r.Width)
	}
	// Direct mode: anchor x = 0.65 * 1280 = 832.
	if !approx(r.Center().X, 832) {
		t.Errorf("expected center x 832, got %f", r.Center().X)
	}
}

func TestEngine_PlaceSkipsHiddenSide(t *testing.T) {
	e := NewEngine()
	m := coords.New(0, 0, coords.PreMirrored)
	sample := frontal()
	sample.Rotation = -0.5

	layout := e.Place(m, sample, catalog.Asset{BaseScale: 1}, customize.New(customize.DefaultConfig()).State())

	if _, ok := layout.For(tracking.Left); ok {
		t.Error("left side should not be drawn past the threshold")
	}
	if _, ok := layout.For(tracking.Right); !ok {
		t.Error("right side should still be drawn")
	}
}

func TestEngine_PlaceNoSample(t *testing.T) {
	layout := NewEngine().Place(coords.New(640, 480, coords.PreMirrored), nil, catalog.Asset{BaseScale: 1}, customize.State{Scale: 1})
	if !layout.Empty() {
		t.Errorf("expected empty layout, got %+v", layout)
	}
}

func TestScreenCenter(t *testing.T) {
	sample := *frontal()
	off := customize.Offset{X: 10, Y: 15}

	t.Run("pre-mirrored matches layout", func(t *testing.T) {
		m := coords.New(1280, 720, coords.PreMirrored)
		if Center(m, sample, tracking.Left, off) != ScreenCenter(m, sample, tracking.Left, off) {
			t.Error("screen and layout should agree in pre-mirrored mode")
		}
	})

	t.Run("direct is flipped on screen", func(t *testing.T) {
		m := coords.New(1280, 720, coords.Direct)
		layout := Center(m, sample, tracking.Left, off)
		screen := ScreenCenter(m, sample, tracking.Left, off)

		if !approx(screen.X, m.Width-layout.X) || !approx(screen.Y, layout.Y) {
			t.Errorf("expected screen %v to mirror layout %v", screen, layout)
		}
	})
}
