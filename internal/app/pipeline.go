package app

import (
	"errors"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/gayaku/internal/capture"
	"github.com/ayusman/gayaku/internal/gesture"
)

// runPipeline is the detection loop that turns camera frames into tracking
// samples.
//
// Pipeline logic:
// 1. Read a frame and keep it in the frame buffer for preview and snapshots
// 2. Ask the motion gate whether the frame is worth detecting on
// 3. Skipped frames leave the previous samples in place
// 4. Run landmark detection and publish faces and hands
// 5. After IdleTimeout without motion, drop the camera to IdleFPS
func (a *App) runPipeline(stop <-chan struct{}) {
	defer a.wg.Done()

	activeFPS := a.Camera().FPS()
	if activeFPS <= 0 {
		activeFPS = capture.DefaultFPS
	}
	activeMode := true
	lastMotion := time.Now()

	ticker := time.NewTicker(time.Second / time.Duration(activeFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame, err := a.Camera().ReadFrame()
			if err != nil {
				if !errors.Is(err, capture.ErrNoFrame) {
					log.Printf("Error reading frame: %v", err)
				}
				continue
			}

			moved := a.processFrame(frame)
			frame.Close()

			if moved {
				lastMotion = time.Now()
				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(activeFPS)
					ticker.Reset(time.Second / time.Duration(activeFPS))
					log.Println("Switched to active mode")
				}
			} else if activeMode && time.Since(lastMotion) > IdleTimeout {
				activeMode = false
				a.Camera().SetFPS(IdleFPS)
				ticker.Reset(time.Second / time.Duration(IdleFPS))
				log.Println("Switched to idle mode")
			}
		}
	}
}

// processFrame buffers the frame and, when the gate allows it, runs detection
// and publishes the results. It reports whether detection ran.
func (a *App) processFrame(frame *gocv.Mat) bool {
	if err := a.frames.Store(frame); err != nil {
		log.Printf("Error buffering frame: %v", err)
	}

	if allow, _ := a.gate.Allow(frame); !allow {
		return false
	}

	d, fallback := a.activeDetector()
	if d == nil {
		return true
	}

	result, err := d.Detect(frame)
	if err != nil {
		msg := "Landmark detection failed: " + err.Error()
		if a.landmarks.Lifecycle().Status().Error != msg {
			log.Println(msg)
		}
		a.landmarks.Lifecycle().MarkFailed(msg)
		a.gestures.Lifecycle().MarkFailed(msg)
		a.landmarks.Lost()
		a.gestures.Lost()
		return true
	}

	// The fallback detector answers but never sees anything; the load
	// failure stays visible.
	if !fallback && !a.landmarks.Lifecycle().Status().IsReady() {
		a.landmarks.Lifecycle().MarkReady()
		a.gestures.Lifecycle().MarkReady()
		log.Println("Landmark detection ready")
	}

	a.landmarks.Publish(gesture.AnchorFromFaces(result.Faces))
	a.gestures.Publish(a.classify.Sample(result.Hands))
	return true
}
