// Package api provides the HTTP API handlers for the try-on server.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/gayaku/internal/catalog"
	"github.com/ayusman/gayaku/internal/store"
)

// AssetHandler handles HTTP requests for catalog assets.
type AssetHandler struct {
	store    *store.Store
	onChange func() error
}

// NewAssetHandler creates an AssetHandler. onChange, if set, runs after every
// successful write so the live catalog can be refreshed.
func NewAssetHandler(s *store.Store, onChange func() error) *AssetHandler {
	return &AssetHandler{store: s, onChange: onChange}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/assets or /api/assets/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/assets")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type assetRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ImageRef    string  `json:"image_ref"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
	BaseScale   float64 `json:"base_scale"`
}

type assetResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ImageRef    string  `json:"image_ref"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	BaseScale   float64 `json:"base_scale"`
	Position    int     `json:"position"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type listAssetsResponse struct {
	Assets []assetResponse `json:"assets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toAssetResponse(a *store.Asset) assetResponse {
	return assetResponse{
		ID:          a.ID,
		Name:        a.Name,
		ImageRef:    a.ImageRef,
		Category:    string(a.Category),
		Description: a.Description,
		BaseScale:   a.BaseScale,
		Position:    a.Position,
		CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   a.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (h *AssetHandler) changed() {
	if h.onChange == nil {
		return
	}
	if err := h.onChange(); err != nil {
		log.Printf("Failed to refresh catalog: %v", err)
	}
}

// list handles GET /api/assets.
func (h *AssetHandler) list(w http.ResponseWriter, r *http.Request) {
	assets, err := h.store.Assets().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assets")
		return
	}

	response := listAssetsResponse{
		Assets: make([]assetResponse, 0, len(assets)),
	}
	for _, a := range assets {
		response.Assets = append(response.Assets, toAssetResponse(a))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/assets/{id}.
func (h *AssetHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	asset, err := h.store.Assets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get asset")
		return
	}

	writeJSON(w, http.StatusOK, toAssetResponse(asset))
}

// create handles POST /api/assets. Without an id one is generated.
func (h *AssetHandler) create(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.ImageRef == "" {
		writeError(w, http.StatusBadRequest, "Image reference is required")
		return
	}

	category := catalog.Category(req.Category)
	if category == "" {
		category = catalog.CategoryStud
	}
	if !category.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid category")
		return
	}

	scale := req.BaseScale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 {
		writeError(w, http.StatusBadRequest, "Base scale must be positive")
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	} else if _, err := h.store.Assets().GetByID(id); err == nil {
		writeError(w, http.StatusConflict, "Asset already exists")
		return
	}

	position, err := h.store.Assets().NextPosition()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create asset")
		return
	}

	asset := &store.Asset{
		ID:        id,
		Name:      req.Name,
		ImageRef:  req.ImageRef,
		Category:  category,
		BaseScale: scale,
		Position:  position,
	}
	if req.Description != nil {
		asset.Description = *req.Description
	}

	if err := h.store.Assets().Create(asset); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create asset")
		return
	}
	h.changed()

	writeJSON(w, http.StatusCreated, toAssetResponse(asset))
}

// update handles PUT /api/assets/{id}. Empty fields keep their values.
func (h *AssetHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	asset, err := h.store.Assets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get asset")
		return
	}

	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		asset.Name = req.Name
	}
	if req.ImageRef != "" {
		asset.ImageRef = req.ImageRef
	}
	if req.Category != "" {
		category := catalog.Category(req.Category)
		if !category.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		asset.Category = category
	}
	if req.Description != nil {
		asset.Description = *req.Description
	}
	if req.BaseScale < 0 {
		writeError(w, http.StatusBadRequest, "Base scale must be positive")
		return
	}
	if req.BaseScale > 0 {
		asset.BaseScale = req.BaseScale
	}

	if err := h.store.Assets().Update(asset); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update asset")
		return
	}
	h.changed()

	writeJSON(w, http.StatusOK, toAssetResponse(asset))
}

// delete handles DELETE /api/assets/{id}.
func (h *AssetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Assets().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete asset")
		return
	}
	h.changed()

	w.WriteHeader(http.StatusNoContent)
}
