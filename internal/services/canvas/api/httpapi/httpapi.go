// Package httpapi exposes the canvas service as a JSON HTTP API.
package httpapi

import (
	"net/http"

	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/placement"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/projection"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/storage"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Handler serves the canvas HTTP API.
type Handler struct {
	coordinator *placement.Coordinator
	store       storage.Store
	canvas      projection.Source
}

// New creates a handler. canvas is the projection read strategy; pass the
// store itself to read through the grouped-aggregation query, or a primed
// projection index to serve canvas state from memory.
func New(coordinator *placement.Coordinator, store storage.Store, canvas projection.Source) *Handler {
	if canvas == nil {
		canvas = store
	}
	return &Handler{
		coordinator: coordinator,
		store:       store,
		canvas:      canvas,
	}
}

// Routes returns the route table for the API.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /api/canvas/info", h.handleCanvasInfo)
	mux.HandleFunc("GET /api/canvas/state", h.handleCanvasState)
	mux.HandleFunc("GET /api/canvas/pixel/{x}/{y}", h.handleGetPixel)
	mux.HandleFunc("POST /api/pixels", h.handlePlacePixel)
	mux.HandleFunc("GET /api/pixels/recent", h.handleRecentPixels)
	mux.HandleFunc("GET /api/pixels/history/{x}/{y}", h.handlePixelHistory)
	mux.HandleFunc("GET /api/users/{id}/stats", h.handleUserStats)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	return mux
}
