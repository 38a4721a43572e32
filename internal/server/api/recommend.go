package api

import (
	"context"
	"errors"
	"image"
	"log"
	"net/http"

	"github.com/ayusman/gayaku/internal/catalog"
	"github.com/ayusman/gayaku/internal/recommend"
)

// Recommender picks a catalog style for a snapshot.
type Recommender interface {
	Recommend(ctx context.Context, snapshot image.Image, cat *catalog.Catalog) (recommend.Recommendation, error)
}

// Snapshotter provides the current composited frame.
type Snapshotter interface {
	Composite() (image.Image, error)
}

// RecommendHandler handles POST /api/recommend.
type RecommendHandler struct {
	rec  Recommender
	snap Snapshotter
	ctl  Controller
}

// NewRecommendHandler creates a RecommendHandler.
func NewRecommendHandler(rec Recommender, snap Snapshotter, ctl Controller) *RecommendHandler {
	return &RecommendHandler{rec: rec, snap: snap, ctl: ctl}
}

// ServeHTTP asks the model for a style. With ?apply=true the pick is also
// selected.
func (h *RecommendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, err := h.snap.Composite()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "No camera frame available")
		return
	}

	s := h.ctl.Session()
	rec, err := h.rec.Recommend(r.Context(), img, s.Catalog())
	if err != nil {
		log.Printf("Recommendation failed: %v", err)
		switch {
		case errors.Is(err, recommend.ErrEmptyCatalog):
			writeError(w, http.StatusConflict, "Catalog is empty")
		case errors.Is(err, recommend.ErrUnknownStyle):
			writeError(w, http.StatusBadGateway, "Model recommended an unknown style")
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "Recommendation timed out")
		default:
			writeError(w, http.StatusBadGateway, "Recommendation failed")
		}
		return
	}

	if r.URL.Query().Get("apply") == "true" {
		if err := s.Select(rec.SelectedStyle); err != nil {
			writeError(w, http.StatusConflict, "Recommended style was removed")
			return
		}
		if err := h.ctl.SaveSettings(); err != nil {
			log.Printf("Failed to save settings: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, rec)
}
