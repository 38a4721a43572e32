package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/gayaku/internal/app"
	"github.com/ayusman/gayaku/internal/detector"
	"github.com/ayusman/gayaku/internal/session"
	"github.com/ayusman/gayaku/internal/store"
)

func newTestApp(t *testing.T) (*app.App, *store.Store) {
	t.Helper()

	dir := t.TempDir()
	s, err := store.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	a, err := app.New(app.Config{
		Store:    s,
		Session:  session.DefaultConfig(),
		AssetDir: filepath.Join(dir, "assets"),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	a.SetDetector(detector.NewMockDetector())
	return a, s
}

func frameImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 40, A: 255})
		}
	}
	return img
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
		if _, exists := response["tracking"]; exists {
			t.Error("tracking status needs an app")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(method, "/api/health", nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})

	t.Run("reports tracking with an app", func(t *testing.T) {
		a, _ := newTestApp(t)
		rec := httptest.NewRecorder()
		New(Config{App: a}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		var response map[string]any
		json.NewDecoder(rec.Body).Decode(&response)
		if response["running"] != false {
			t.Errorf("expected running false, got %v", response["running"])
		}
		if _, ok := response["tracking"].(map[string]any); !ok {
			t.Errorf("expected tracking status, got %v", response["tracking"])
		}
	})
}

func TestServer_RoutesDependOnConfig(t *testing.T) {
	a, s := newTestApp(t)

	tests := []struct {
		name   string
		config Config
		path   string
		want   int
	}{
		{"no store", Config{}, "/api/assets", http.StatusNotFound},
		{"store", Config{Store: s}, "/api/assets", http.StatusOK},
		{"no app", Config{Store: s}, "/api/session", http.StatusNotFound},
		{"app", Config{App: a}, "/api/session", http.StatusOK},
		{"no recommender", Config{App: a}, "/api/recommend", http.StatusNotFound},
		{"unknown", Config{App: a, Store: s}, "/api/nonexistent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(tt.config).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s: expected %d, got %d", tt.path, tt.want, rec.Code)
			}
		})
	}
}

func TestServer_AssetChangesReachSession(t *testing.T) {
	a, s := newTestApp(t)
	srv := New(Config{Store: s, App: a})

	body := `{"id": "jade-drop", "name": "Jade Drops", "image_ref": "earrings/jade.png", "category": "drop"}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/assets", bytes.NewBufferString(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	if _, err := a.Session().Catalog().Get("jade-drop"); err != nil {
		t.Errorf("new asset should be selectable: %v", err)
	}
}

func TestSnapshotHandler(t *testing.T) {
	a, _ := newTestApp(t)
	h := NewSnapshotHandler(a)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected %d before the first frame, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	a.Frames().StoreImage(frameImage(64, 36))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot?download=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/webp" {
		t.Errorf("expected image/webp, got %s", ct)
	}
	data := rec.Body.Bytes()
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Errorf("expected a WebP container, got % x", data[:min(len(data), 12)])
	}
	if rec.Header().Get("Content-Disposition") == "" {
		t.Error("expected attachment header for download")
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "gayaku-server-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	index := "<html><body>try-on</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(index), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != index {
		t.Errorf("expected index.html, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = httptest.NewRecorder()
	New(Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("root without static dir: expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}
