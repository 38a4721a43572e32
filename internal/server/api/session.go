package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ayusman/gayaku/internal/catalog"
	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/customize"
	"github.com/ayusman/gayaku/internal/drag"
	"github.com/ayusman/gayaku/internal/session"
)

// Controller exposes the live session and settings persistence.
type Controller interface {
	Session() *session.Session
	SaveSettings() error
}

// SessionHandler handles the try-on session controls under /api/session.
type SessionHandler struct {
	ctl Controller
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(ctl Controller) *SessionHandler {
	return &SessionHandler{ctl: ctl}
}

type sessionResponse struct {
	ID             string           `json:"id"`
	Selected       *catalog.Asset   `json:"selected,omitempty"`
	Customization  customize.State  `json:"customization"`
	Limits         customize.Limits `json:"limits"`
	GestureEnabled bool             `json:"gesture_enabled"`
	DragPolicy     drag.Policy      `json:"drag_policy"`
	Mode           coords.Mode      `json:"mode"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Status         session.Status   `json:"status"`
}

type selectionRequest struct {
	AssetID string `json:"asset_id"`
}

type gesturesRequest struct {
	Enabled *bool `json:"enabled"`
}

type policyRequest struct {
	Policy string `json:"policy"`
}

type sizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ServeHTTP routes /api/session and its sub-resources.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.get(w, r)
	case path == "customization" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctl.Session().Customization())
	case path == "customization" && r.Method == http.MethodPatch:
		h.customize(w, r)
	case path == "reset" && r.Method == http.MethodPost:
		h.reset(w, r)
	case path == "selection" && r.Method == http.MethodPut:
		h.selection(w, r)
	case path == "gestures" && r.Method == http.MethodPut:
		h.gestures(w, r)
	case path == "policy" && r.Method == http.MethodPut:
		h.policy(w, r)
	case path == "size" && r.Method == http.MethodPut:
		h.size(w, r)
	case path == "" || path == "customization" || path == "reset" || path == "selection" ||
		path == "gestures" || path == "policy" || path == "size":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) snapshot() sessionResponse {
	s := h.ctl.Session()
	mp := s.Mapper()
	resp := sessionResponse{
		ID:             s.ID(),
		Customization:  s.Customization(),
		Limits:         s.Limits(),
		GestureEnabled: s.GestureEnabled(),
		DragPolicy:     s.DragPolicy(),
		Mode:           mp.Mode,
		Width:          int(mp.Width),
		Height:         int(mp.Height),
		Status:         s.Status(),
	}
	if a, ok := s.Selected(); ok {
		resp.Selected = &a
	}
	return resp
}

func (h *SessionHandler) save() {
	if err := h.ctl.SaveSettings(); err != nil {
		log.Printf("Failed to save settings: %v", err)
	}
}

// get handles GET /api/session.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot())
}

// customize handles PATCH /api/session/customization. Values are clamped,
// never rejected.
func (h *SessionHandler) customize(w http.ResponseWriter, r *http.Request) {
	var req customize.Update
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	st := h.ctl.Session().UpdateCustomization(req)
	h.save()
	writeJSON(w, http.StatusOK, st)
}

// reset handles POST /api/session/reset.
func (h *SessionHandler) reset(w http.ResponseWriter, r *http.Request) {
	st := h.ctl.Session().ResetCustomization()
	h.save()
	writeJSON(w, http.StatusOK, st)
}

// selection handles PUT /api/session/selection. An empty id clears it.
func (h *SessionHandler) selection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.AssetID == "" {
		h.ctl.Session().ClearSelection()
	} else if err := h.ctl.Session().Select(req.AssetID); err != nil {
		if errors.Is(err, catalog.ErrUnknownAsset) {
			writeError(w, http.StatusNotFound, "Asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to select asset")
		return
	}

	h.save()
	writeJSON(w, http.StatusOK, h.snapshot())
}

// gestures handles PUT /api/session/gestures.
func (h *SessionHandler) gestures(w http.ResponseWriter, r *http.Request) {
	var req gesturesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "Enabled is required")
		return
	}

	h.ctl.Session().SetGestureEnabled(*req.Enabled)
	h.save()
	writeJSON(w, http.StatusOK, h.snapshot())
}

// policy handles PUT /api/session/policy.
func (h *SessionHandler) policy(w http.ResponseWriter, r *http.Request) {
	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p := drag.ParsePolicy(req.Policy)
	if p.String() != req.Policy {
		writeError(w, http.StatusBadRequest, "Invalid policy")
		return
	}

	h.ctl.Session().SetDragPolicy(p)
	h.save()
	writeJSON(w, http.StatusOK, h.snapshot())
}

// size handles PUT /api/session/size with the surface's reported size.
func (h *SessionHandler) size(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.ctl.Session().Resize(req.Width, req.Height)
	writeJSON(w, http.StatusOK, h.snapshot())
}
