package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	apperrors "github.com/GusEh06/pixel-battle-lite/internal/platform/errors"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/domain/event"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/storage"
)

const (
	defaultRecentLimit  = 100
	maxRecentLimit      = 500
	defaultHistoryLimit = 50

	activeUserWindow = 24 * time.Hour
)

type pixelInfo struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Color     string `json:"color"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

func toPixelInfo(placement event.Placement) pixelInfo {
	return pixelInfo{
		X:         placement.X,
		Y:         placement.Y,
		Color:     placement.Color,
		UserID:    placement.UserID,
		Timestamp: formatTime(placement.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

type rootResponse struct {
	Message    string `json:"message"`
	Version    string `json:"version"`
	CanvasSize string `json:"canvas_size"`
	Cooldown   string `json:"cooldown"`
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message:    "pixel-battle-lite API",
		Version:    Version,
		CanvasSize: h.canvasSize(),
		Cooldown:   fmt.Sprintf("%ds", h.coordinator.CooldownSeconds()),
	})
}

type canvasInfoResponse struct {
	Width              int   `json:"width"`
	Height             int   `json:"height"`
	TotalPixelsPainted int64 `json:"total_pixels_painted"`
	ActiveUsers24h     int64 `json:"active_users_24h"`
	CooldownSeconds    int   `json:"cooldown_seconds"`
}

func (h *Handler) handleCanvasInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.store.CountEvents(ctx)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeStorageFault, "count placements", err))
		return
	}
	active, err := h.store.CountDistinctUsersSince(ctx, time.Now().UTC().Add(-activeUserWindow))
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeStorageFault, "count active users", err))
		return
	}

	writeJSON(w, http.StatusOK, canvasInfoResponse{
		Width:              h.coordinator.Width(),
		Height:             h.coordinator.Height(),
		TotalPixelsPainted: total,
		ActiveUsers24h:     active,
		CooldownSeconds:    h.coordinator.CooldownSeconds(),
	})
}

type canvasStateResponse struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Pixels      []pixelInfo `json:"pixels"`
	TotalPixels int         `json:"total_pixels"`
}

func (h *Handler) handleCanvasState(w http.ResponseWriter, r *http.Request) {
	cells, err := h.canvas.LatestByCoordinate(r.Context())
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeStorageFault, "derive canvas state", err))
		return
	}

	pixels := make([]pixelInfo, 0, len(cells))
	for _, placement := range cells {
		pixels = append(pixels, toPixelInfo(placement))
	}
	// Stable order keeps responses diffable for clients and tests.
	sort.Slice(pixels, func(i, j int) bool {
		if pixels[i].Y != pixels[j].Y {
			return pixels[i].Y < pixels[j].Y
		}
		return pixels[i].X < pixels[j].X
	})

	writeJSON(w, http.StatusOK, canvasStateResponse{
		Width:       h.coordinator.Width(),
		Height:      h.coordinator.Height(),
		Pixels:      pixels,
		TotalPixels: len(pixels),
	})
}

func (h *Handler) handleGetPixel(w http.ResponseWriter, r *http.Request) {
	x, y, err := h.pathCoordinates(r)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := h.store.EventsAt(r.Context(), x, y, 1)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeStorageFault, "read pixel", err))
		return
	}
	if len(events) == 0 {
		writeError(w, apperrors.New(apperrors.CodeNotFound,
			fmt.Sprintf("pixel (%d,%d) has never been painted", x, y)))
		return
	}

	writeJSON(w, http.StatusOK, toPixelInfo(events[0]))
}

type placeRequest struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

type placeResponse struct {
	Success           bool      `json:"success"`
	Message           string    `json:"message"`
	Pixel             pixelInfo `json:"pixel"`
	CooldownRemaining int       `json:"cooldown_remaining"`
}

func (h *Handler) handlePlacePixel(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidCoordinates, "decode request body", err))
		return
	}

	result, err := h.coordinator.Place(r.Context(), req.X, req.Y, req.Color, userIDFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeResponse{
		Success:           true,
		Message:           "pixel placed",
		Pixel:             toPixelInfo(result.Placement),
		CooldownRemaining: result.CooldownSeconds,
	})
}

func (h *Handler) handleRecentPixels(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, defaultRecentLimit)
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	events, err := h.store.RecentEvents(r.Context(), limit)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeStorageFault, "read recent placements", err))
		return
	}

	pixels := make([]pixelInfo, 0, len(events))
	for _, placement := range events {
		pixels = append(pixels, toPixelInfo(placement))
	}
	writeJSON(w, http.StatusOK, pixels)
}

type historyEntry struct {
	Color     string `json:"color"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

type historyResponse struct {
	X            int            `json:"x"`
	Y            int            `json:"y"`
	History      []historyEntry `json:"history"`
	TotalChanges int            `json:"total_changes"`
}

func (h *Handler) handlePixelHistory(w http.ResponseWriter, r *http.Request) {
	x, y, err := h.pathCoordinates(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := queryLimit(r, defaultHistoryLimit)
	events, err := h.store.EventsAt(r.Context(), x, y, limit)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeStorageFault, "read pixel history", err))
		return
	}

	history := make([]historyEntry, 0, len(events))
	for _, placement := range events {
		history = append(history, historyEntry{
			Color:     placement.Color,
			UserID:    placement.UserID,
			Timestamp: formatTime(placement.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, historyResponse{
		X:            x,
		Y:            y,
		History:      history,
		TotalChanges: len(history),
	})
}

type userStatsResponse struct {
	UserID            string  `json:"user_id"`
	Username          string  `json:"username"`
	TotalPixelsPlaced int64   `json:"total_pixels_placed"`
	LastPixelAt       *string `json:"last_pixel_at"`
	MemberSince       string  `json:"member_since"`
}

func (h *Handler) handleUserStats(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			writeError(w, storage.ErrNotFound)
			return
		}
		writeError(w, apperrors.Wrap(apperrors.CodeStorageFault, "read user stats", err))
		return
	}

	var lastPixelAt *string
	if record.LastPixelAt != nil {
		formatted := formatTime(*record.LastPixelAt)
		lastPixelAt = &formatted
	}
	writeJSON(w, http.StatusOK, userStatsResponse{
		UserID:            record.ID,
		Username:          record.Username,
		TotalPixelsPlaced: record.TotalPixelsPlaced,
		LastPixelAt:       lastPixelAt,
		MemberSince:       formatTime(record.CreatedAt),
	})
}

type healthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	CanvasSize string `json:"canvas_size"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, database := "healthy", "healthy"
	if err := h.store.Ping(r.Context()); err != nil {
		status, database = "degraded", "unreachable"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     status,
		Database:   database,
		CanvasSize: h.canvasSize(),
	})
}

func (h *Handler) canvasSize() string {
	return fmt.Sprintf("%dx%d", h.coordinator.Width(), h.coordinator.Height())
}

// pathCoordinates parses {x}/{y} and bounds-checks them against the grid.
func (h *Handler) pathCoordinates(r *http.Request) (int, int, error) {
	x, errX := strconv.Atoi(r.PathValue("x"))
	y, errY := strconv.Atoi(r.PathValue("y"))
	if errX != nil || errY != nil || !h.coordinator.InBounds(x, y) {
		return 0, 0, apperrors.WithMetadata(apperrors.CodeInvalidCoordinates,
			"coordinates outside the canvas",
			map[string]string{
				"max_x": strconv.Itoa(h.coordinator.Width() - 1),
				"max_y": strconv.Itoa(h.coordinator.Height() - 1),
			})
	}
	return x, y, nil
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
