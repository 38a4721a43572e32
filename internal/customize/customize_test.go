package customize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ayusman/gayaku/internal/tracking"
)

func TestNew_Defaults(t *testing.T) {
	c := New(DefaultConfig())

	if c.Scale() != 1.0 {
		t.Errorf("expected scale 1.0, got %f", c.Scale())
	}
	for _, side := range tracking.Sides {
		if got := c.Offset(side); got != (Offset{X: 0, Y: 15}) {
			t.Errorf("%s: expected (0,15), got %+v", side, got)
		}
	}
	if c.Mode() != Independent {
		t.Errorf("expected independent mode, got %s", c.Mode())
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	c := New(Config{
		Limits:        Limits{MinScale: -1, MaxScale: 0, MaxOffset: math.NaN()},
		DefaultOffset: Offset{X: 500, Y: -500},
	})

	if c.Limits().MaxOffset != DefaultMaxOffset {
		t.Errorf("expected default max offset, got %f", c.Limits().MaxOffset)
	}
	if c.Scale() != DefaultScale {
		t.Errorf("expected default scale, got %f", c.Scale())
	}
	if got := c.Offset(tracking.Left); got != (Offset{X: 50, Y: -50}) {
		t.Errorf("expected clamped default offset, got %+v", got)
	}
}

func TestSetScale(t *testing.T) {
	c := New(DefaultConfig())

	tests := []struct {
		in   float64
		want float64
	}{
		{1.5, 1.5},
		{5, 2.0},
		{0.1, 0.3},
		{-3, 0.3},
		{math.Inf(1), 2.0},
		{math.NaN(), 1.0},
	}
	for _, tt := range tests {
		c.SetScale(tt.in)
		if c.Scale() != tt.want {
			t.Errorf("SetScale(%v): got %f, want %f", tt.in, c.Scale(), tt.want)
		}
	}
}

func TestSetOffset(t *testing.T) {
	t.Run("independent sides", func(t *testing.T) {
		c := New(DefaultConfig())

		if !c.SetOffset(tracking.Left, Offset{X: -10, Y: 20}) {
			t.Error("expected change")
		}
		if got := c.Offset(tracking.Right); got != (Offset{X: 0, Y: 15}) {
			t.Errorf("right side should be untouched, got %+v", got)
		}
		if c.SetOffset(tracking.Left, Offset{X: -10, Y: 20}) {
			t.Error("rewriting the same value should not report a change")
		}
	})

	t.Run("clamped to bounds", func(t *testing.T) {
		c := New(DefaultConfig())
		c.SetOffset(tracking.Right, Offset{X: 120, Y: -99})

		if got := c.Offset(tracking.Right); got != (Offset{X: 50, Y: -50}) {
			t.Errorf("expected (50,-50), got %+v", got)
		}
	})

	t.Run("NaN treated as zero", func(t *testing.T) {
		c := New(DefaultConfig())
		c.SetOffset(tracking.Left, Offset{X: math.NaN(), Y: 4})

		if got := c.Offset(tracking.Left); got != (Offset{X: 0, Y: 4}) {
			t.Errorf("expected (0,4), got %+v", got)
		}
	})

	t.Run("mirrored mode writes both sides", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mode = Mirrored
		c := New(cfg)

		c.SetOffset(tracking.Right, Offset{X: 12, Y: 30})
		if got := c.Offset(tracking.Left); got != (Offset{X: -12, Y: 30}) {
			t.Errorf("expected left (-12,30), got %+v", got)
		}
		if got := c.Shared(); got != (Offset{X: -12, Y: 30}) {
			t.Errorf("shared view should match left, got %+v", got)
		}
	})
}

func TestBoundsUnderRepeatedWrites(t *testing.T) {
	c := New(DefaultConfig())
	lim := c.Limits()

	for i := 0; i < 200; i++ {
		o := c.Offset(tracking.Left)
		c.SetOffset(tracking.Left, Offset{X: o.X - 37, Y: o.Y + 41})
		c.SetScale(c.Scale() * 1.7)

		o = c.Offset(tracking.Left)
		if math.Abs(o.X) > lim.MaxOffset || math.Abs(o.Y) > lim.MaxOffset {
			t.Fatalf("offset out of bounds after %d writes: %+v", i, o)
		}
		if c.Scale() > lim.MaxScale || c.Scale() < lim.MinScale {
			t.Fatalf("scale out of bounds after %d writes: %f", i, c.Scale())
		}
	}
}

func TestSetMode(t *testing.T) {
	c := New(DefaultConfig())
	c.SetOffset(tracking.Left, Offset{X: 8, Y: 2})
	c.SetOffset(tracking.Right, Offset{X: 30, Y: 40})

	if !c.SetMode(Mirrored) {
		t.Fatal("expected mode change")
	}
	if got := c.Offset(tracking.Right); got != (Offset{X: -8, Y: 2}) {
		t.Errorf("right should be re-derived from left, got %+v", got)
	}
	if c.SetMode(Mirrored) {
		t.Error("setting the same mode should not report a change")
	}
}

func TestApplyAndReset(t *testing.T) {
	c := New(DefaultConfig())
	scale := 1.8
	mode := Mirrored

	changed := c.Apply(Update{
		Scale: &scale,
		Mode:  &mode,
		Left:  &Offset{X: 5, Y: 5},
	})
	if !changed {
		t.Fatal("expected change")
	}

	st := c.State()
	if st.Scale != 1.8 || st.Right != (Offset{X: -5, Y: 5}) {
		t.Errorf("unexpected state: %+v", st)
	}

	c.Reset()
	if c.State() != New(DefaultConfig()).State() {
		t.Errorf("reset should restore defaults, got %+v", c.State())
	}
}

func TestUpdate_JSON(t *testing.T) {
	var u Update
	if err := json.Unmarshal([]byte(`{"scale":0.5,"mode":"mirrored","right":{"x":3,"y":4}}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.Scale == nil || *u.Scale != 0.5 {
		t.Error("expected scale 0.5")
	}
	if u.Mode == nil || *u.Mode != Mirrored {
		t.Error("expected mirrored mode")
	}
	if u.Left != nil {
		t.Error("left should be nil")
	}
}

func TestRestore(t *testing.T) {
	c := New(DefaultConfig())
	c.Restore(State{Scale: 7, Left: Offset{X: 3, Y: 99}, Right: Offset{X: 1, Y: 1}, Mode: Independent})

	st := c.State()
	if st.Scale != 2.0 || st.Left != (Offset{X: 3, Y: 50}) || st.Right != (Offset{X: 1, Y: 1}) {
		t.Errorf("unexpected restored state %+v", st)
	}

	c.Reset()
	if c.Offset(tracking.Left) != (Offset{X: 0, Y: 15}) {
		t.Error("reset should ignore restored values")
	}
}
