package tracking

import (
	"sync/atomic"
)

// LandmarkSource holds the latest anchor sample and the face model's
// lifecycle.
type LandmarkSource struct {
	lifecycle *Lifecycle
	latest    Latest[*AnchorSample]
}

// NewLandmarkSource creates an uninitialized source with no sample.
func NewLandmarkSource() *LandmarkSource {
	return &LandmarkSource{lifecycle: NewLifecycle()}
}

// Lifecycle exposes the source's model-ready state.
func (s *LandmarkSource) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// Publish stores sample as the current one. A nil sample means no subject
// and suppresses overlays until a subject is seen again.
func (s *LandmarkSource) Publish(sample *AnchorSample) {
	s.latest.Store(sample)
}

// Lost records that tracking stopped producing subjects.
func (s *LandmarkSource) Lost() {
	s.latest.Store(nil)
}

// Latest returns the current sample (nil when no subject) and its sequence.
func (s *LandmarkSource) Latest() (*AnchorSample, uint64) {
	return s.latest.Load()
}

// GestureSource holds the latest gesture sample. It can be enabled and
// disabled independently of landmark tracking.
type GestureSource struct {
	lifecycle *Lifecycle
	enabled   atomic.Bool
	latest    Latest[GestureSample]
}

// NewGestureSource creates a disabled gesture source.
func NewGestureSource() *GestureSource {
	return &GestureSource{lifecycle: NewLifecycle()}
}

// Lifecycle exposes the source's model-ready state.
func (s *GestureSource) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// SetEnabled starts or stops gesture tracking. Disabling publishes an
// inactive sample so nothing downstream keeps acting on a stale pinch.
func (s *GestureSource) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
	if !enabled {
		s.latest.Store(Inactive)
	}
}

// Enabled reports whether gesture tracking is on.
func (s *GestureSource) Enabled() bool {
	return s.enabled.Load()
}

// Publish stores sample as the current one. It is a no-op while the source
// is disabled.
func (s *GestureSource) Publish(sample GestureSample) {
	if !s.Enabled() {
		return
	}
	if !sample.Active {
		sample.Position = nil
	}
	s.latest.Store(sample)
}

// Lost drops any pinch in progress, for when hand tracking stops answering.
func (s *GestureSource) Lost() {
	s.latest.Store(Inactive)
}

// Latest returns the current sample and its sequence.
func (s *GestureSource) Latest() (GestureSample, uint64) {
	return s.latest.Load()
}
