// Package session runs the try-on tick: it reads the latest tracking samples,
// advances the pinch drag, lays out the selected overlay and reports a Frame.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/gayaku/internal/catalog"
	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/customize"
	"github.com/ayusman/gayaku/internal/drag"
	"github.com/ayusman/gayaku/internal/placement"
	"github.com/ayusman/gayaku/internal/render"
	"github.com/ayusman/gayaku/internal/tracking"
)

// Config holds the session settings.
type Config struct {
	Mode          coords.Mode
	Width         int
	Height        int
	Engine        placement.Engine
	Drag          drag.Config
	Customization customize.Config
}

// DefaultConfig returns a pre-mirrored session at the fallback surface size.
func DefaultConfig() Config {
	return Config{
		Mode:          coords.PreMirrored,
		Engine:        placement.NewEngine(),
		Drag:          drag.DefaultConfig(),
		Customization: customize.DefaultConfig(),
	}
}

// Session is one user's try-on state. All methods are safe for concurrent
// use; the tick and UI writes are serialized by the session lock, so a slider
// write and a drag write landing in the same tick resolve as last writer wins.
type Session struct {
	id        string
	cfg       Config
	landmarks *tracking.LandmarkSource
	gestures  *tracking.GestureSource

	mu       sync.Mutex
	catalog  *catalog.Catalog
	fit      *customize.Customization
	drag     *drag.Machine
	selected *catalog.Asset
	width    int
	height   int
	seq      uint64
}

// New creates a session over the given catalog and sources. The first
// catalog asset is selected.
func New(cfg Config, cat *catalog.Catalog, landmarks *tracking.LandmarkSource, gestures *tracking.GestureSource) *Session {
	if cfg.Engine.BaseSize <= 0 {
		cfg.Engine.BaseSize = placement.DefaultBaseSize
	}

	s := &Session{
		id:        uuid.New().String(),
		cfg:       cfg,
		catalog:   cat,
		landmarks: landmarks,
		gestures:  gestures,
		fit:       customize.New(cfg.Customization),
		drag:      drag.New(cfg.Drag),
		width:     cfg.Width,
		height:    cfg.Height,
	}
	if a, ok := cat.First(); ok {
		s.selected = &a
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Catalog returns the catalog the session selects from.
func (s *Session) Catalog() *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// SetCatalog replaces the catalog. The selection is kept when its id is still
// present, refreshed to the new entry; otherwise it is cleared.
func (s *Session) SetCatalog(cat *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = cat
	if s.selected == nil {
		return
	}
	if a, err := cat.Get(s.selected.ID); err == nil {
		s.selected = &a
	} else {
		s.selected = nil
	}
}

// Mode returns the coordinate mode the session lays out in.
func (s *Session) Mode() coords.Mode {
	return s.cfg.Mode
}

// Resize records the surface's reported dimensions. Non-positive values
// revert to the fallback size.
func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

// Mapper returns the mapper for the current surface size.
func (s *Session) Mapper() coords.Mapper {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapper()
}

func (s *Session) mapper() coords.Mapper {
	return coords.New(s.width, s.height, s.cfg.Mode)
}

// Select makes the asset with id the current selection.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.catalog.Get(id)
	if err != nil {
		return err
	}
	s.selected = &a
	return nil
}

// ClearSelection removes the current selection; nothing is drawn until a new
// asset is selected.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Selected returns the current selection.
func (s *Session) Selected() (catalog.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return catalog.Asset{}, false
	}
	return *s.selected, true
}

// Customization returns the current fit.
func (s *Session) Customization() customize.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fit.State()
}

// Limits returns the customization bounds.
func (s *Session) Limits() customize.Limits {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fit.Limits()
}

// UpdateCustomization applies a slider write and returns the resulting fit.
func (s *Session) UpdateCustomization(u customize.Update) customize.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fit.Apply(u)
	return s.fit.State()
}

// RestoreCustomization loads a saved fit, for example from a previous run.
func (s *Session) RestoreCustomization(st customize.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fit.Restore(st)
}

// ResetCustomization restores the default fit. An active drag is dropped so
// it does not immediately overwrite the reset values.
func (s *Session) ResetCustomization() customize.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Cancel()
	s.fit.Reset()
	return s.fit.State()
}

// SetGestureEnabled turns gesture mode on or off. Turning it off ends any
// drag at once without writing a final offset.
func (s *Session) SetGestureEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gestures.SetEnabled(enabled)
	if !enabled {
		s.drag.Cancel()
	}
}

// GestureEnabled reports whether gesture mode is on.
func (s *Session) GestureEnabled() bool {
	return s.gestures.Enabled()
}

// SetDragPolicy changes how new pinches pick a side.
func (s *Session) SetDragPolicy(p drag.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.SetPolicy(p)
}

// DragPolicy returns the binding policy in force.
func (s *Session) DragPolicy() drag.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Config().Policy
}

// Status returns both sources' lifecycle state.
func (s *Session) Status() Status {
	return Status{
		Landmarks:      s.landmarks.Lifecycle().Status(),
		Gestures:       s.gestures.Lifecycle().Status(),
		GestureEnabled: s.gestures.Enabled(),
	}
}

// Tick advances the session by one display tick using the latest samples.
// A sample that has not been replaced since the last tick is reused.
func (s *Session) Tick() Frame {
	anchors, anchorSeq := s.landmarks.Latest()
	gesture, gestureSeq := s.gestures.Latest()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if !s.gestures.Enabled() {
		gesture = tracking.Inactive
		s.drag.Cancel()
	}

	mp := s.mapper()
	s.drag.Update(drag.Input{Mapper: mp, Anchors: anchors, Gesture: gesture}, s.fit)

	fit := s.fit.State()
	frame := Frame{
		Seq:             s.seq,
		Width:           int(mp.Width),
		Height:          int(mp.Height),
		Mode:            mp.Mode,
		Customization:   fit,
		SubjectDetected: anchors != nil,
		AnchorSeq:       anchorSeq,
		GestureSeq:      gestureSeq,
		Status:          s.Status(),
		Drag:            s.dragStatus(mp, anchors, gesture, fit),
	}
	if anchors != nil {
		frame.Rotation = anchors.Rotation
	}
	if gesture.OpenPalm && gesture.PalmPosition != nil {
		p := mp.Screen().ToPixel(*gesture.PalmPosition)
		frame.OpenPalm = &p
	}

	if s.selected != nil {
		asset := *s.selected
		frame.Asset = &asset
		frame.Layout = s.cfg.Engine.Place(mp, anchors, asset, fit)
		frame.Instructions = render.Instructions(frame.Layout, asset)
	}
	if frame.Instructions == nil {
		frame.Instructions = []render.Instruction{}
	}
	return frame
}

// LayoutFor places the selection on a surface with its own mapper, such as
// the composited camera preview. The tick is not advanced.
func (s *Session) LayoutFor(mp coords.Mapper) (placement.Layout, catalog.Asset, bool) {
	anchors, _ := s.landmarks.Latest()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil || anchors == nil {
		return placement.Layout{}, catalog.Asset{}, false
	}
	asset := *s.selected
	return s.cfg.Engine.Place(mp, anchors, asset, s.fit.State()), asset, true
}

func (s *Session) dragStatus(mp coords.Mapper, anchors *tracking.AnchorSample, g tracking.GestureSample, fit customize.State) DragStatus {
	st := DragStatus{
		State:  s.drag.State(),
		Policy: s.drag.Config().Policy,
		Zones:  s.drag.Zones(mp, anchors, fit),
	}
	if ds, ok := s.drag.Session(); ok {
		target := ds.Target
		st.Target = &target
	}
	if g.Active && g.Position != nil {
		p := mp.Screen().ToPixel(*g.Position)
		st.Pinch = &p
	}
	return st
}
