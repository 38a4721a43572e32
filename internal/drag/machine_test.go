package drag

import (
	"math"
	"testing"

	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/customize"
	"github.com/ayusman/gayaku/internal/tracking"
)

// screenGesture builds an active pinch at the given screen pixel.
func screenGesture(m coords.Mapper, x, y float64) tracking.GestureSample {
	n := m.Screen().ToNormalized(coords.Point{X: x, Y: y})
	return tracking.GestureSample{Active: true, Position: &n}
}

// anchorsAt places the left anchor at a screen pixel so that its grab zone
// (anchor + default offset) is centered on (x, y+15). The right anchor sits
// far away on the other half.
func anchorsAt(m coords.Mapper, x, y float64) *tracking.AnchorSample {
	return &tracking.AnchorSample{
		LeftAnchor:  m.Screen().ToNormalized(coords.Point{X: x, Y: y}),
		RightAnchor: coords.Point{X: 0.7, Y: 0.5},
	}
}

func newFit() *customize.Customization {
	return customize.New(customize.DefaultConfig())
}

func TestMachine_FirstDragStepSmooths(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	anchors := anchorsAt(mp, 900, 385)
	fit := newFit()
	m := New(DefaultConfig())

	wrote := m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 900, 400)}, fit)
	if wrote {
		t.Error("binding must not write an offset")
	}
	if m.State() != Bound {
		t.Fatalf("expected bound, got %s", m.State())
	}
	s, _ := m.Session()
	if s.Target != tracking.Left {
		t.Fatalf("expected left target, got %s", s.Target)
	}
	if s.StartOffset != (customize.Offset{X: 0, Y: 15}) {
		t.Errorf("unexpected start offset %+v", s.StartOffset)
	}

	// delta (-50, 20) -> target (-50, 35) -> one 40% step from (0, 15).
	wrote = m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 850, 420)}, fit)
	if !wrote {
		t.Fatal("expected a write")
	}
	if got := fit.Offset(tracking.Left); got != (customize.Offset{X: -20, Y: 23}) {
		t.Errorf("expected (-20,23), got %+v", got)
	}
	if got := fit.Offset(tracking.Right); got != (customize.Offset{X: 0, Y: 15}) {
		t.Errorf("right side must not move, got %+v", got)
	}
}

func TestMachine_ReleaseStopsWrites(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	anchors := anchorsAt(mp, 900, 385)
	fit := newFit()
	m := New(DefaultConfig())

	m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 900, 400)}, fit)
	m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 880, 410)}, fit)
	before := fit.State()

	if m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: tracking.Inactive}, fit) {
		t.Error("release must not write")
	}
	if m.State() != Idle {
		t.Fatalf("expected idle after release, got %s", m.State())
	}
	if _, ok := m.Session(); ok {
		t.Error("session should be cleared")
	}

	// A pinch far from both anchors stays idle and writes nothing.
	for i := 0; i < 5; i++ {
		m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 100, 100)}, fit)
	}
	if fit.State() != before {
		t.Errorf("customization changed after release: %+v -> %+v", before, fit.State())
	}
	if m.State() != Idle {
		t.Error("expected to remain idle")
	}
}

func TestMachine_ConvergesAndRounds(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	anchors := anchorsAt(mp, 900, 385)
	fit := newFit()
	m := New(DefaultConfig())

	m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 900, 400)}, fit)
	for i := 0; i < 40; i++ {
		m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 870, 390)}, fit)
	}

	got := fit.Offset(tracking.Left)
	if got != (customize.Offset{X: -30, Y: 5}) {
		t.Errorf("expected convergence to (-30,5), got %+v", got)
	}
	if got.X != math.Trunc(got.X) || got.Y != math.Trunc(got.Y) {
		t.Errorf("offsets should be whole pixels, got %+v", got)
	}

	// Holding still at the converged value produces no further writes.
	if m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 870, 390)}, fit) {
		t.Error("expected no write once settled")
	}
}

func TestMachine_DirectModeFlipsHorizontal(t *testing.T) {
	mp := coords.New(1280, 720, coords.Direct)
	anchors := anchorsAt(mp, 900, 385)
	fit := newFit()
	m := New(DefaultConfig())

	m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 900, 400)}, fit)
	if m.State() != Bound {
		t.Fatal("expected proximity binding in screen space")
	}
	m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 850, 420)}, fit)

	// Screen-left motion is layout-right motion on a flipping surface.
	if got := fit.Offset(tracking.Left); got != (customize.Offset{X: 20, Y: 23}) {
		t.Errorf("expected (20,23), got %+v", got)
	}
}

func TestMachine_BoundsUnderAdversarialDrags(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	anchors := anchorsAt(mp, 900, 385)
	fit := newFit()
	m := New(Config{Policy: ScreenHalf, Smoothing: 1})
	lim := fit.Limits()

	pinches := []coords.Point{{X: 1279, Y: 0}, {X: 0, Y: 719}, {X: 1279, Y: 719}, {X: 0, Y: 0}}
	for round := 0; round < 20; round++ {
		m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 640, 360)}, fit)
		for _, p := range pinches {
			m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, p.X, p.Y)}, fit)
			for _, side := range tracking.Sides {
				o := fit.Offset(side)
				if math.Abs(o.X) > lim.MaxOffset || math.Abs(o.Y) > lim.MaxOffset {
					t.Fatalf("offset out of bounds: %s %+v", side, o)
				}
			}
		}
		m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: tracking.Inactive}, fit)
	}
}

func TestMachine_BindingIsIdempotent(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	anchors := anchorsAt(mp, 900, 385)
	fit := newFit()
	pinch := coords.Point{X: 910, Y: 395}

	fresh := New(DefaultConfig())
	wantSide, wantOK := fresh.Target(mp, *anchors, pinch, fit.State())

	used := New(DefaultConfig())
	for i := 0; i < 3; i++ {
		used.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 400, 300)}, fit)
		used.Update(Input{Mapper: mp, Anchors: anchors, Gesture: tracking.Inactive}, fit)
	}
	side, ok := used.Target(mp, *anchors, pinch, fit.State())

	if side != wantSide || ok != wantOK {
		t.Errorf("binding depends on history: (%s,%v) vs (%s,%v)", side, ok, wantSide, wantOK)
	}
	if !ok || side != tracking.Left {
		t.Errorf("expected left within radius, got (%s,%v)", side, ok)
	}
}

func TestMachine_ProximityOutsideRadius(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	anchors := anchorsAt(mp, 900, 385)
	m := New(DefaultConfig())

	// 61px right of the left grab zone center.
	if _, ok := m.Target(mp, *anchors, coords.Point{X: 961, Y: 400}, newFit().State()); ok {
		t.Error("expected no binding outside the grab radius")
	}
}

func TestMachine_ProximityRadiusIsExclusive(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	anchors := anchorsAt(mp, 900, 385)
	m := New(DefaultConfig())

	if _, ok := m.Target(mp, *anchors, coords.Point{X: 960, Y: 400}, newFit().State()); ok {
		t.Error("a pinch exactly on the radius must not bind")
	}
	if side, ok := m.Target(mp, *anchors, coords.Point{X: 959, Y: 400}, newFit().State()); !ok || side != tracking.Left {
		t.Errorf("expected left binding just inside the radius, got %v %v", side, ok)
	}
}

func TestMachine_ScreenHalf(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	m := New(Config{Policy: ScreenHalf})
	anchors := tracking.AnchorSample{}
	fit := newFit().State()

	if side, _ := m.Target(mp, anchors, coords.Point{X: 1000, Y: 10}, fit); side != tracking.Left {
		t.Errorf("right half should bind left, got %s", side)
	}
	if side, _ := m.Target(mp, anchors, coords.Point{X: 100, Y: 10}, fit); side != tracking.Right {
		t.Errorf("left half should bind right, got %s", side)
	}
	if m.Zones(mp, &anchors, fit) != nil {
		t.Error("screen-half policy has no grab zones")
	}
}

func TestMachine_NoAnchorsNoBinding(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	m := New(Config{Policy: ScreenHalf})

	m.Update(Input{Mapper: mp, Gesture: screenGesture(mp, 900, 400)}, newFit())
	if m.State() != Idle {
		t.Error("expected idle without an anchor sample")
	}
}

func TestMachine_Cancel(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	anchors := anchorsAt(mp, 900, 385)
	fit := newFit()
	m := New(DefaultConfig())

	m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 900, 400)}, fit)
	m.Cancel()

	if m.State() != Idle {
		t.Fatal("expected idle after cancel")
	}
	if fit.Offset(tracking.Left) != (customize.Offset{X: 0, Y: 15}) {
		t.Error("cancel must not write")
	}

	// The next active sample rebinds from the current offset.
	m.Update(Input{Mapper: mp, Anchors: anchors, Gesture: screenGesture(mp, 900, 400)}, fit)
	if m.State() != Bound {
		t.Error("expected rebind after cancel")
	}
}

func TestMachine_Zones(t *testing.T) {
	mp := coords.New(1280, 720, coords.PreMirrored)
	anchors := anchorsAt(mp, 900, 385)
	m := New(DefaultConfig())

	zones := m.Zones(mp, anchors, newFit().State())
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].Radius != DefaultGrabRadius {
		t.Errorf("expected radius %v, got %v", DefaultGrabRadius, zones[0].Radius)
	}
	if math.Abs(zones[0].Center.X-900) > 1e-6 || math.Abs(zones[0].Center.Y-400) > 1e-6 {
		t.Errorf("unexpected left zone center %+v", zones[0].Center)
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("screen-half") != ScreenHalf || ParsePolicy("bogus") != Proximity {
		t.Error("unexpected policy parse")
	}
}
