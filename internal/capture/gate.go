package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion gate defaults.
const (
	// DefaultMotionThreshold is the percentage of changed pixels that counts as motion.
	DefaultMotionThreshold = 1.0
	// DefaultMaxSkip bounds how long detection may be skipped on a still scene.
	DefaultMaxSkip = 500 * time.Millisecond

	gateBlurSize    = 21
	gateDiffLevel   = 25
	gateSampleWidth = 320
)

// GateConfig tunes a MotionGate.
type GateConfig struct {
	Threshold float64       `json:"threshold"`
	MaxSkip   time.Duration `json:"max_skip"`
}

// DefaultGateConfig returns a 1% threshold with a 500ms refresh.
func DefaultGateConfig() GateConfig {
	return GateConfig{Threshold: DefaultMotionThreshold, MaxSkip: DefaultMaxSkip}
}

// MotionGate decides whether a frame is worth running landmark detection on.
// Still frames are skipped so the last published sample is reused, but never
// for longer than MaxSkip.
type MotionGate struct {
	cfg         GateConfig
	prevGray    gocv.Mat
	initialized bool
	lastPass    time.Time
	now         func() time.Time
	mu          sync.Mutex
}

// NewMotionGate creates a gate. Non-positive settings take the defaults.
func NewMotionGate(cfg GateConfig) *MotionGate {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultMotionThreshold
	}
	if cfg.MaxSkip <= 0 {
		cfg.MaxSkip = DefaultMaxSkip
	}
	return &MotionGate{
		cfg:      cfg,
		prevGray: gocv.NewMat(),
		now:      time.Now,
	}
}

// Allow reports whether detection should run on frame, along with the
// percentage of pixels that changed since the previous frame.
func (g *MotionGate) Allow(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	change, first := g.change(frame)
	now := g.now()
	if first || change > g.cfg.Threshold || now.Sub(g.lastPass) >= g.cfg.MaxSkip {
		g.lastPass = now
		return true, change
	}
	return false, change
}

// change diffs a downscaled, blurred grayscale copy of frame against the
// previous one. The first frame reports first=true.
func (g *MotionGate) change(frame *gocv.Mat) (float64, bool) {
	small := gocv.NewMat()
	defer small.Close()

	w := frame.Cols()
	h := frame.Rows()
	if w > gateSampleWidth {
		h = h * gateSampleWidth / w
		w = gateSampleWidth
	}
	gocv.Resize(*frame, &small, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	defer gray.Close()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Point{X: gateBlurSize, Y: gateBlurSize}, 0, 0, gocv.BorderDefault)

	if !g.initialized || g.prevGray.Rows() != gray.Rows() || g.prevGray.Cols() != gray.Cols() {
		gray.CopyTo(&g.prevGray)
		g.initialized = true
		return 0, true
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, g.prevGray, &diff)
	gocv.Threshold(diff, &diff, gateDiffLevel, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(diff)
	total := diff.Rows() * diff.Cols()
	gray.CopyTo(&g.prevGray)

	if total == 0 {
		return 0, false
	}
	return float64(changed) / float64(total) * 100.0, false
}

// Reset forgets the previous frame so the next one always passes.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initialized = false
	g.lastPass = time.Time{}
}

// SetThreshold changes the motion threshold. Values <= 0 are ignored.
func (g *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg.Threshold = threshold
}

// Close releases resources used by the gate. It is safe to call twice.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.prevGray.Empty() {
		g.prevGray.Close()
	}
	g.prevGray = gocv.NewMat()
	g.initialized = false
}
