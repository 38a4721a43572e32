// Package config loads the application configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/gayaku/internal/capture"
	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/customize"
	"github.com/ayusman/gayaku/internal/detector"
	"github.com/ayusman/gayaku/internal/drag"
	"github.com/ayusman/gayaku/internal/gesture"
	"github.com/ayusman/gayaku/internal/placement"
	"github.com/ayusman/gayaku/internal/session"
	"github.com/ayusman/gayaku/internal/visibility"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// DataDirName is the per-user data directory under $HOME.
const DataDirName = ".gayaku"

// Duration is a time.Duration written as a string such as "500ms".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// CameraConfig selects the webcam.
type CameraConfig struct {
	DeviceID int `json:"device_id"`
	Width    int `json:"width"`
	Height   int `json:"height"`
	FPS      int `json:"fps"`
}

// MotionConfig tunes the detection gate.
type MotionConfig struct {
	Threshold float64  `json:"threshold"`
	MaxSkip   Duration `json:"max_skip"`
}

// TrackingConfig configures the landmark and gesture sources.
type TrackingConfig struct {
	Detector       detector.Config `json:"detector"`
	PinchThreshold float64         `json:"pinch_threshold"`
	GestureEnabled bool            `json:"gesture_enabled"`
}

// OverlayConfig configures placement and fading.
type OverlayConfig struct {
	Mode      coords.Mode `json:"mode"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	BaseSize  float64     `json:"base_size"`
	Threshold float64     `json:"occlusion_threshold"`
	FadeBand  float64     `json:"fade_band"`
	AssetDir  string      `json:"asset_dir"`
}

// ServerConfig configures the HTTP server and the render tick.
type ServerConfig struct {
	Addr      string `json:"addr"`
	StaticDir string `json:"static_dir"`
	TickFPS   int    `json:"tick_fps"`
}

// StoreConfig locates the database.
type StoreConfig struct {
	Path string `json:"path"`
}

// RecommendConfig configures the style recommender.
type RecommendConfig struct {
	Enabled bool     `json:"enabled"`
	Host    string   `json:"host"`
	Model   string   `json:"model"`
	Timeout Duration `json:"timeout"`
}

// Config is the full application configuration.
type Config struct {
	Camera        CameraConfig     `json:"camera"`
	Motion        MotionConfig     `json:"motion"`
	Tracking      TrackingConfig   `json:"tracking"`
	Overlay       OverlayConfig    `json:"overlay"`
	Customization customize.Config `json:"customization"`
	Drag          drag.Config      `json:"drag"`
	Server        ServerConfig     `json:"server"`
	Store         StoreConfig      `json:"store"`
	Recommend     RecommendConfig  `json:"recommend"`
}

// Default returns the built-in configuration. Paths are left empty and
// resolved against the data directory at startup.
func Default() Config {
	cam := capture.DefaultConfig()
	return Config{
		Camera: CameraConfig{
			DeviceID: cam.DeviceID,
			Width:    cam.Width,
			Height:   cam.Height,
			FPS:      cam.FPS,
		},
		Motion: MotionConfig{
			Threshold: capture.DefaultMotionThreshold,
			MaxSkip:   Duration(capture.DefaultMaxSkip),
		},
		Tracking: TrackingConfig{
			Detector:       detector.DefaultConfig(),
			PinchThreshold: gesture.DefaultPinchThreshold,
		},
		Overlay: OverlayConfig{
			Mode:      coords.PreMirrored,
			BaseSize:  placement.DefaultBaseSize,
			Threshold: visibility.DefaultThreshold,
			FadeBand:  visibility.DefaultFadeBand,
		},
		Customization: customize.DefaultConfig(),
		Drag:          drag.DefaultConfig(),
		Server: ServerConfig{
			Addr:    ":8080",
			TickFPS: 30,
		},
		Recommend: RecommendConfig{
			Host:    "http://127.0.0.1:11434",
			Model:   "llava",
			Timeout: Duration(60 * time.Second),
		},
	}
}

// DataDir returns ~/.gayaku.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DataDirName), nil
}

// DefaultPath returns ~/.gayaku/config.json.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration as indented JSON, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Validate checks ranges that would otherwise be silently replaced by
// component defaults.
func (c *Config) Validate() error {
	switch {
	case c.Overlay.Threshold <= 0 || c.Overlay.Threshold > 1:
		return invalid("overlay.occlusion_threshold must be in (0, 1], got %v", c.Overlay.Threshold)
	case c.Overlay.FadeBand < 0 || c.Overlay.FadeBand > 1:
		return invalid("overlay.fade_band must be in [0, 1], got %v", c.Overlay.FadeBand)
	case c.Overlay.BaseSize <= 0:
		return invalid("overlay.base_size must be positive, got %v", c.Overlay.BaseSize)
	case c.Overlay.Width < 0 || c.Overlay.Height < 0:
		return invalid("overlay size must not be negative")
	case c.Drag.Smoothing <= 0 || c.Drag.Smoothing > 1:
		return invalid("drag.smoothing must be in (0, 1], got %v", c.Drag.Smoothing)
	case c.Drag.GrabRadius <= 0:
		return invalid("drag.grab_radius must be positive, got %v", c.Drag.GrabRadius)
	case c.Customization.Limits.MinScale <= 0 || c.Customization.Limits.MaxScale < c.Customization.Limits.MinScale:
		return invalid("customization scale limits [%v, %v] are not a valid range",
			c.Customization.Limits.MinScale, c.Customization.Limits.MaxScale)
	case c.Customization.Limits.MaxOffset < 0:
		return invalid("customization.limits.max_offset must not be negative, got %v", c.Customization.Limits.MaxOffset)
	case c.Tracking.PinchThreshold <= 0:
		return invalid("tracking.pinch_threshold must be positive, got %v", c.Tracking.PinchThreshold)
	case c.Server.Addr == "":
		return invalid("server.addr is required")
	case c.Server.TickFPS <= 0 || c.Server.TickFPS > 240:
		return invalid("server.tick_fps must be in [1, 240], got %d", c.Server.TickFPS)
	case c.Recommend.Enabled && c.Recommend.Model == "":
		return invalid("recommend.model is required when recommendations are enabled")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// CaptureConfig converts the camera section.
func (c *Config) CaptureConfig() capture.Config {
	return capture.Config{
		DeviceID: c.Camera.DeviceID,
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
		FPS:      c.Camera.FPS,
	}
}

// GateConfig converts the motion section.
func (c *Config) GateConfig() capture.GateConfig {
	return capture.GateConfig{
		Threshold: c.Motion.Threshold,
		MaxSkip:   time.Duration(c.Motion.MaxSkip),
	}
}

// SessionConfig converts the overlay, customization and drag sections.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		Mode:   c.Overlay.Mode,
		Width:  c.Overlay.Width,
		Height: c.Overlay.Height,
		Engine: placement.Engine{
			BaseSize: c.Overlay.BaseSize,
			Visibility: visibility.Model{
				Threshold: c.Overlay.Threshold,
				FadeBand:  c.Overlay.FadeBand,
			},
		},
		Drag:          c.Drag,
		Customization: c.Customization,
	}
}

// ResolvePaths fills empty paths relative to dataDir.
func (c *Config) ResolvePaths(dataDir string) {
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(dataDir, "gayaku.db")
	}
	if c.Overlay.AssetDir == "" {
		c.Overlay.AssetDir = filepath.Join(dataDir, "assets")
	}
}
