package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/gayaku/internal/app"
	"github.com/ayusman/gayaku/internal/config"
	"github.com/ayusman/gayaku/internal/recommend"
	"github.com/ayusman/gayaku/internal/server"
	"github.com/ayusman/gayaku/internal/session"
	"github.com/ayusman/gayaku/internal/store"
	"github.com/ayusman/gayaku/internal/tracking"
	"github.com/ayusman/gayaku/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to config.json (default ~/.gayaku/config.json)")
	addr := flag.String("addr", "", "listen address, overrides the config")
	headless := flag.Bool("headless", false, "run without the system tray")
	writeConfig := flag.Bool("write-config", false, "write the effective config and exit")
	flag.Parse()

	fmt.Println("Gayaku - Earring Try-On")

	dataDir, err := config.DataDir()
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}
	if *configPath == "" {
		*configPath = filepath.Join(dataDir, "config.json")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	cfg.ResolvePaths(dataDir)

	if *writeConfig {
		if err := cfg.Save(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	for _, dir := range []string{dataDir, cfg.Overlay.AssetDir, filepath.Dir(cfg.Store.Path)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application, err := app.New(app.Config{
		Store:          st,
		Camera:         cfg.CaptureConfig(),
		Gate:           cfg.GateConfig(),
		Detector:       cfg.Tracking.Detector,
		PinchThreshold: cfg.Tracking.PinchThreshold,
		Session:        cfg.SessionConfig(),
		AssetDir:       cfg.Overlay.AssetDir,
		TickFPS:        cfg.Server.TickFPS,
		GestureEnabled: cfg.Tracking.GestureEnabled,
	})
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	var recommender *recommend.Recommender
	if cfg.Recommend.Enabled {
		recommender, err = recommend.New(recommend.Config{
			Host:    cfg.Recommend.Host,
			Model:   cfg.Recommend.Model,
			Timeout: time.Duration(cfg.Recommend.Timeout),
		})
		if err != nil {
			log.Printf("Recommendations disabled: %v", err)
		} else {
			log.Printf("Recommendations via %s (%s)", cfg.Recommend.Host, recommender.Model())
		}
	}

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir(dataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srvCfg := server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       application,
	}
	if recommender != nil {
		srvCfg.Recommender = recommender
	}
	srv := server.New(srvCfg)

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := application.Start(); err != nil {
		log.Printf("Camera unavailable, serving without capture: %v", err)
	}

	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		<-ctx.Done()
		stop()
	} else {
		runTray(application, pageURL(cfg.Server.Addr))
	}

	log.Println("Shutting down")
	srv.Close()
	application.Stop()
}

// runTray blocks until Quit is chosen from the tray menu.
func runTray(application *app.App, url string) {
	s := application.Session()
	t := tray.New(s.GestureEnabled())

	t.OnToggle(func(enabled bool) {
		s.SetGestureEnabled(enabled)
		if err := application.SaveSettings(); err != nil {
			log.Printf("Failed to save settings: %v", err)
		}
	})
	t.OnReset(func() {
		s.ResetCustomization()
		if err := application.SaveSettings(); err != nil {
			log.Printf("Failed to save settings: %v", err)
		}
	})
	t.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})

	unsubscribe := application.Subscribe(func(f session.Frame) {
		t.SetStatus(statusLine(f))
		t.SetGestureEnabled(f.Status.GestureEnabled)
	})
	defer unsubscribe()

	t.Run()
}

func statusLine(f session.Frame) string {
	switch {
	case f.Status.Landmarks.State == tracking.Failed:
		return "Tracking unavailable"
	case f.Drag.Target != nil:
		return "Adjusting " + f.Drag.Target.String() + " earring"
	case f.SubjectDetected:
		return "Face detected"
	default:
		return "Looking for face..."
	}
}

func pageURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and the data directory.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
