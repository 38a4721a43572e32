package server

import (
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"gocv.io/x/gocv"
)

const streamInterval = 66 * time.Millisecond // ~15 FPS

// Compositor renders the current camera frame with the overlay drawn on it.
type Compositor interface {
	Composite() (image.Image, error)
}

// StreamHandler serves the composited preview as MJPEG.
type StreamHandler struct {
	source Compositor
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(source Compositor) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		img, err := h.source.Composite()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		jpeg, err := encodeJPEG(img)
		if err != nil {
			continue
		}

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		w.Write(jpeg)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(streamInterval)
	}
}

// encodeJPEG converts img to a Mat and encodes it with OpenCV.
func encodeJPEG(img image.Image) ([]byte, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// SnapshotHandler serves the composited frame as a WebP still.
type SnapshotHandler struct {
	source Compositor
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(source Compositor) *SnapshotHandler {
	return &SnapshotHandler{source: source}
}

// ServeHTTP handles GET /api/snapshot.
func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, err := h.source.Composite()
	if err != nil {
		http.Error(w, "No camera frame available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Query().Get("download") == "true" {
		w.Header().Set("Content-Disposition", `attachment; filename="gayaku-`+time.Now().Format("20060102-150405")+`.webp"`)
	}
	if err := nativewebp.Encode(w, img, nil); err != nil {
		http.Error(w, "Failed to encode snapshot", http.StatusInternalServerError)
	}
}
