package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	apperrors "github.com/GusEh06/pixel-battle-lite/internal/platform/errors"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/placement"
)

type errorBody struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError renders a domain error in the API's error envelope. Unexpected
// errors surface as a generic storage fault so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)

	body := errorBody{Code: code, Message: publicMessage(code)}
	if remaining, ok := placement.RemainingSeconds(err); ok {
		body.Details = map[string]any{"cooldown_remaining": remaining}
	} else if domainErr := asDomainError(err); domainErr != nil && len(domainErr.Metadata) > 0 {
		details := make(map[string]any, len(domainErr.Metadata))
		for key, value := range domainErr.Metadata {
			details[key] = value
		}
		body.Details = details
	}

	if code == apperrors.CodeStorageFault || code == apperrors.CodeUnknown {
		log.Printf("request failed: %v", err)
	}

	writeJSON(w, code.HTTPStatus(), errorResponse{Success: false, Error: body})
}

func publicMessage(code apperrors.Code) string {
	switch code {
	case apperrors.CodeInvalidCoordinates:
		return "coordinates outside the canvas"
	case apperrors.CodeInvalidColor:
		return "color must be # followed by 6 hex digits"
	case apperrors.CodeCooldownActive:
		return "cooldown active, wait before placing another pixel"
	case apperrors.CodeNotFound:
		return "not found"
	default:
		return "internal error"
	}
}

func asDomainError(err error) *apperrors.Error {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}
