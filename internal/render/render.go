// Package render issues draw calls for a placement layout.
package render

import (
	"fmt"
	"image"

	"github.com/ayusman/gayaku/internal/catalog"
	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/placement"
)

// Surface is a display that overlays can be drawn onto.
type Surface interface {
	// Size returns the surface dimensions in pixels. Zero means unknown.
	Size() (width, height int)

	// Mode reports how layout space relates to the surface: Direct means
	// the surface applies the mirror itself.
	Mode() coords.Mode

	// DrawImage draws img scaled into r at r.Opacity.
	DrawImage(img image.Image, r placement.Rect) error
}

// ImageSource resolves an asset image reference.
type ImageSource interface {
	Load(ref string) (image.Image, error)
}

// Instruction is one draw call in a form the browser client can replay.
type Instruction struct {
	AssetID  string         `json:"asset_id"`
	ImageRef string         `json:"image_ref"`
	Rect     placement.Rect `json:"rect"`
}

// Instructions lists the draw calls for layout. Sides with zero opacity
// produce no instruction.
func Instructions(layout placement.Layout, asset catalog.Asset) []Instruction {
	out := make([]Instruction, 0, len(layout.Rects))
	for _, r := range layout.Rects {
		if r.Opacity <= 0 {
			continue
		}
		out = append(out, Instruction{AssetID: asset.ID, ImageRef: asset.ImageRef, Rect: r})
	}
	return out
}

// Renderer draws layouts onto a surface.
type Renderer struct {
	images ImageSource
}

// New creates a renderer that loads asset images from images.
func New(images ImageSource) *Renderer {
	return &Renderer{images: images}
}

// Mapper returns the coordinate mapper matching surface: its size (or the
// fallback size) and its mirror mode.
func Mapper(s Surface) coords.Mapper {
	w, h := s.Size()
	return coords.New(w, h, s.Mode())
}

// Draw issues one draw per visible side of layout and returns how many were
// drawn.
func (r *Renderer) Draw(s Surface, layout placement.Layout, asset catalog.Asset) (int, error) {
	if layout.Empty() {
		return 0, nil
	}

	img, err := r.images.Load(asset.ImageRef)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", asset.ID, err)
	}

	drawn := 0
	for _, rect := range layout.Rects {
		if rect.Opacity <= 0 {
			continue
		}
		if err := s.DrawImage(img, rect); err != nil {
			return drawn, fmt.Errorf("draw %s %s: %w", asset.ID, rect.Side, err)
		}
		drawn++
	}
	return drawn, nil
}
