// Package placement turns anchor samples, the selected asset and the current
// fit into draw rectangles.
package placement

import (
	"github.com/ayusman/gayaku/internal/catalog"
	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/customize"
	"github.com/ayusman/gayaku/internal/tracking"
	"github.com/ayusman/gayaku/internal/visibility"
)

// DefaultBaseSize is the edge length in pixels of an asset at scale 1.
const DefaultBaseSize = 80.0

// Rect is one side's draw rectangle in layout pixels. Overlays are square.
type Rect struct {
	Side    tracking.Side `json:"side"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Opacity float64       `json:"opacity"`
}

// Center returns the middle of the rectangle.
func (r Rect) Center() coords.Point {
	return coords.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Layout is the set of sides to draw this tick, in draw order. Sides that
// are hidden are absent.
type Layout struct {
	Rects []Rect `json:"rects"`
}

// For returns the rectangle for side, if it is drawn.
func (l Layout) For(side tracking.Side) (Rect, bool) {
	for _, r := range l.Rects {
		if r.Side == side {
			return r, true
		}
	}
	return Rect{}, false
}

// Empty reports whether nothing is drawn.
func (l Layout) Empty() bool {
	return len(l.Rects) == 0
}

// Engine computes layouts.
type Engine struct {
	BaseSize   float64
	Visibility visibility.Model
}

// NewEngine returns an engine with DefaultBaseSize and the default fade.
func NewEngine() Engine {
	return Engine{BaseSize: DefaultBaseSize, Visibility: visibility.Default()}
}

// Size returns the edge length of asset drawn at the given fit.
func (e Engine) Size(asset catalog.Asset, fit customize.State) float64 {
	base := e.BaseSize
	if base <= 0 {
		base = DefaultBaseSize
	}
	return base * asset.Scale() * fit.Scale
}

// Place lays out asset on both anchors of sample. A nil sample draws nothing.
func (e Engine) Place(m coords.Mapper, sample *tracking.AnchorSample, asset catalog.Asset, fit customize.State) Layout {
	if sample == nil {
		return Layout{}
	}

	size := e.Size(asset, fit)
	if !(size > 0) {
		return Layout{}
	}

	var out Layout
	for _, side := range tracking.Sides {
		opacity := e.Visibility.Opacity(sample.Rotation, side)
		if opacity <= 0 {
			continue
		}

		c := Center(m, *sample, side, fit.Offset(side))
		out.Rects = append(out.Rects, Rect{
			Side:    side,
			X:       c.X - size/2,
			Y:       c.Y - size/2,
			Width:   size,
			Height:  size,
			Opacity: opacity,
		})
	}
	return out
}

// Center returns where side's overlay is centered in layout space: the
// anchor mapped to pixels plus the side's offset.
func Center(m coords.Mapper, sample tracking.AnchorSample, side tracking.Side, off customize.Offset) coords.Point {
	return m.ToPixel(sample.Anchor(side)).Add(coords.Point{X: off.X, Y: off.Y})
}

// ScreenCenter returns the same point as Center in the space the user sees.
// It differs from Center only when the surface mirrors layout space.
func ScreenCenter(m coords.Mapper, sample tracking.AnchorSample, side tracking.Side, off customize.Offset) coords.Point {
	p := m.Screen().ToPixel(sample.Anchor(side))
	return p.Add(coords.Point{X: off.X * m.ScreenSign(), Y: off.Y})
}
