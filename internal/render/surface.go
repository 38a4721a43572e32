package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/placement"
)

// ImageSurface composites overlays onto a camera frame.
//
// The frame is given as the camera captured it. In PreMirrored mode the
// canvas is the flipped frame and overlays land unflipped; in Direct mode
// overlays land on the raw frame and Image flips the result. Either way the
// output is mirrored exactly once.
type ImageSurface struct {
	mode   coords.Mode
	canvas *image.NRGBA
}

// NewImageSurface prepares a surface over frame.
func NewImageSurface(frame image.Image, mode coords.Mode) *ImageSurface {
	var canvas *image.NRGBA
	if mode == coords.PreMirrored {
		canvas = imaging.FlipH(frame)
	} else {
		canvas = imaging.Clone(frame)
	}
	return &ImageSurface{mode: mode, canvas: canvas}
}

// Size returns the frame dimensions.
func (s *ImageSurface) Size() (int, int) {
	b := s.canvas.Bounds()
	return b.Dx(), b.Dy()
}

// Mode returns the surface's mirror mode.
func (s *ImageSurface) Mode() coords.Mode {
	return s.mode
}

// DrawImage scales img into r and blends it over the canvas at r.Opacity.
func (s *ImageSurface) DrawImage(img image.Image, r placement.Rect) error {
	dst := image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	)
	if dst.Empty() || !dst.Overlaps(s.canvas.Bounds()) {
		return nil
	}

	alpha := uint8(math.Round(clamp01(r.Opacity) * 0xff))
	draw.CatmullRom.Scale(s.canvas, dst, img, img.Bounds(), draw.Over, &draw.Options{
		SrcMask: image.NewUniform(color.Alpha{A: alpha}),
	})
	return nil
}

// Image returns the composited frame as the user sees it.
func (s *ImageSurface) Image() image.Image {
	if s.mode == coords.Direct {
		return imaging.FlipH(s.canvas)
	}
	return s.canvas
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
