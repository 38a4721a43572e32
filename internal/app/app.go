// Package app wires the camera, landmark detection and the try-on session
// together and runs them.
package app

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/ayusman/gayaku/internal/capture"
	"github.com/ayusman/gayaku/internal/catalog"
	"github.com/ayusman/gayaku/internal/detector"
	"github.com/ayusman/gayaku/internal/drag"
	"github.com/ayusman/gayaku/internal/gesture"
	"github.com/ayusman/gayaku/internal/render"
	"github.com/ayusman/gayaku/internal/session"
	"github.com/ayusman/gayaku/internal/store"
	"github.com/ayusman/gayaku/internal/tracking"
)

// Pipeline timing constants.
const (
	// IdleFPS is the camera rate when the scene has been still for IdleTimeout.
	IdleFPS = 5
	// IdleTimeout is how long without motion before dropping to IdleFPS.
	IdleTimeout = 2 * time.Second
	// DefaultTickFPS is the session tick rate.
	DefaultTickFPS = 30
)

// ErrNoFrame is returned by Composite before the camera produced a frame.
var ErrNoFrame = errors.New("no camera frame yet")

// Config holds configuration options for the application.
type Config struct {
	Store          *store.Store
	Camera         capture.Config
	Gate           capture.GateConfig
	Detector       detector.Config
	PinchThreshold float64
	Session        session.Config
	AssetDir       string
	TickFPS        int
	GestureEnabled bool
}

// App owns the detection pipeline and the session tick.
type App struct {
	config    Config
	camera    capture.Camera
	gate      *capture.MotionGate
	frames    *capture.FrameBuffer
	detector  detector.Detector
	fallback  bool
	classify  *gesture.Classifier
	landmarks *tracking.LandmarkSource
	gestures  *tracking.GestureSource
	session   *session.Session
	images    *catalog.ImageLoader
	renderer  *render.Renderer

	mu     sync.RWMutex
	stopCh chan struct{}
	wg     sync.WaitGroup

	frameMu  sync.RWMutex
	latest   session.Frame
	dragging bool

	listenerMu   sync.Mutex
	listeners    map[int]func(session.Frame)
	nextListener int

	missingMu sync.Mutex
	missing   map[string]bool
}

// New creates the application. The catalog is seeded into the store on first
// run and saved settings are restored.
func New(config Config) (*App, error) {
	if config.TickFPS <= 0 {
		config.TickFPS = DefaultTickFPS
	}

	cat := catalog.New(catalog.Default())
	if config.Store != nil {
		if n, err := config.Store.Assets().Seed(catalog.Default()); err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		} else if n > 0 {
			log.Printf("Seeded catalog with %d assets", n)
		}
		stored, err := config.Store.Assets().Catalog()
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = stored
	}

	landmarks := tracking.NewLandmarkSource()
	gestures := tracking.NewGestureSource()
	images := catalog.NewImageLoader(config.AssetDir)

	a := &App{
		config:    config,
		camera:    capture.NewCamera(config.Camera),
		gate:      capture.NewMotionGate(config.Gate),
		frames:    capture.NewFrameBuffer(),
		classify:  gesture.NewClassifier(config.PinchThreshold),
		landmarks: landmarks,
		gestures:  gestures,
		session:   session.New(config.Session, cat, landmarks, gestures),
		images:    images,
		renderer:  render.New(images),
		listeners: make(map[int]func(session.Frame)),
		missing:   make(map[string]bool),
	}
	a.session.SetGestureEnabled(config.GestureEnabled)
	a.restoreSettings()
	a.preloadImages()

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe landmark detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.useFallback(err)
	}

	return a, nil
}

// useFallback installs the mock detector after the real one failed to load.
// Both sources stay Failed with the load error until SetDetector replaces it.
func (a *App) useFallback(cause error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = detector.NewMockDetector()
	a.fallback = true
	msg := fmt.Sprintf("Failed to load landmark model: %v", cause)
	a.landmarks.Lifecycle().MarkFailed(msg)
	a.gestures.Lifecycle().MarkFailed(msg)
}

// SetDetector sets the landmark detector implementation to use. Both sources
// return to Uninitialized until the new detector answers.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
	a.fallback = false
	a.landmarks.Lifecycle().Reset()
	a.gestures.Lifecycle().Reset()
}

// SetCamera replaces the camera. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Start opens the camera and runs the detection pipeline and the session
// tick until Stop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.Camera.FPS)
	if w, h := a.camera.Size(); w > 0 && h > 0 {
		a.session.Resize(w, h)
	}

	a.stopCh = make(chan struct{})
	a.wg.Add(2)
	go a.runPipeline(a.stopCh)
	go a.runTicker(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the pipeline, saves settings and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	a.mu.Unlock()
	a.wg.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.SaveSettings(); err != nil {
		log.Printf("Error saving settings: %v", err)
	}

	if err := a.camera.Close(); err != nil && !errors.Is(err, capture.ErrCameraNotOpen) {
		log.Printf("Error closing camera: %v", err)
	}

	a.gate.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Running reports whether the pipeline is started.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Session returns the try-on session.
func (a *App) Session() *session.Session {
	return a.session
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Frames returns the buffer holding the latest camera frame.
func (a *App) Frames() *capture.FrameBuffer {
	return a.frames
}

// Images returns the asset image loader.
func (a *App) Images() *catalog.ImageLoader {
	return a.images
}

// Landmarks returns the landmark source fed by the pipeline.
func (a *App) Landmarks() *tracking.LandmarkSource {
	return a.landmarks
}

// Gestures returns the gesture source fed by the pipeline.
func (a *App) Gestures() *tracking.GestureSource {
	return a.gestures
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// activeDetector returns the detector and whether it stands in for one that
// failed to load.
func (a *App) activeDetector() (detector.Detector, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector, a.fallback
}

// Latest returns the most recent tick result.
func (a *App) Latest() session.Frame {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.latest
}

// Subscribe registers fn to receive every tick result. The returned function
// removes the subscription.
func (a *App) Subscribe(fn func(session.Frame)) func() {
	a.listenerMu.Lock()
	defer a.listenerMu.Unlock()

	id := a.nextListener
	a.nextListener++
	a.listeners[id] = fn

	return func() {
		a.listenerMu.Lock()
		defer a.listenerMu.Unlock()
		delete(a.listeners, id)
	}
}

// Tick advances the session once, records the result and notifies
// subscribers. A finished drag persists the new offsets.
func (a *App) Tick() session.Frame {
	frame := a.session.Tick()

	a.frameMu.Lock()
	a.latest = frame
	released := a.dragging && frame.Drag.State == drag.Idle
	a.dragging = frame.Drag.State == drag.Bound
	a.frameMu.Unlock()

	if released {
		if err := a.saveCustomization(); err != nil {
			log.Printf("Error saving customization: %v", err)
		}
	}

	a.listenerMu.Lock()
	listeners := make([]func(session.Frame), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(frame)
	}
	return frame
}

// Composite returns the latest camera frame as seen on screen with the
// selected overlay drawn on it. A missing asset image leaves the frame bare.
func (a *App) Composite() (image.Image, error) {
	f, ok := a.frames.Latest()
	if !ok {
		return nil, ErrNoFrame
	}

	surface := render.NewImageSurface(f.Image, a.session.Mode())
	layout, asset, ok := a.session.LayoutFor(render.Mapper(surface))
	if ok {
		if _, err := a.renderer.Draw(surface, layout, asset); err != nil {
			a.logMissing(asset.ImageRef, err)
		}
	}
	return surface.Image(), nil
}

// ReloadCatalog re-reads the catalog from the store into the session.
func (a *App) ReloadCatalog() error {
	if a.config.Store == nil {
		return nil
	}
	cat, err := a.config.Store.Assets().Catalog()
	if err != nil {
		return err
	}
	a.session.SetCatalog(cat)

	a.missingMu.Lock()
	a.missing = make(map[string]bool)
	a.missingMu.Unlock()
	a.preloadImages()
	return nil
}

// preloadImages decodes the catalog's images up front so a missing file is
// reported once at load rather than on the first composite.
func (a *App) preloadImages() {
	for ref, err := range a.images.Preload(a.session.Catalog().List()) {
		a.logMissing(ref, err)
	}
}

func (a *App) logMissing(ref string, err error) {
	a.missingMu.Lock()
	defer a.missingMu.Unlock()
	if a.missing[ref] {
		return
	}
	a.missing[ref] = true
	log.Printf("Overlay image unavailable: %v", err)
}

func (a *App) runTicker(stop <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.TickFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.Tick()
		}
	}
}
