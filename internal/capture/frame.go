package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Frame is a captured video frame converted for compositing.
type Frame struct {
	Image     image.Image
	Timestamp int64
	Width     int
	Height    int
}

// FrameBuffer keeps the most recent frame so preview and snapshot handlers
// do not compete with the detection pipeline for camera reads.
type FrameBuffer struct {
	mu    sync.RWMutex
	frame Frame
	ok    bool
}

// NewFrameBuffer creates an empty buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Store converts mat and makes it the latest frame. The mat is not retained.
func (b *FrameBuffer) Store(mat *gocv.Mat) error {
	if mat == nil || mat.Empty() {
		return ErrNoFrame
	}

	img, err := mat.ToImage()
	if err != nil {
		return err
	}

	b.StoreImage(img)
	return nil
}

// StoreImage makes img the latest frame.
func (b *FrameBuffer) StoreImage(img image.Image) {
	bounds := img.Bounds()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = Frame{
		Image:     img,
		Timestamp: time.Now().UnixMilli(),
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}
	b.ok = true
}

// Latest returns the most recent frame, if any.
func (b *FrameBuffer) Latest() (Frame, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frame, b.ok
}

// Clear drops the stored frame.
func (b *FrameBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = Frame{}
	b.ok = false
}
