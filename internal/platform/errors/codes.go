// Package errors provides structured error handling with machine-readable codes.
package errors

import "net/http"

// Code is a machine-readable error code exposed on the wire.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Placement errors
	CodeInvalidCoordinates Code = "INVALID_COORDINATES"
	CodeInvalidColor       Code = "INVALID_COLOR"
	CodeCooldownActive     Code = "COOLDOWN_ACTIVE"

	// Storage errors
	CodeNotFound     Code = "NOT_FOUND"
	CodeStorageFault Code = "STORAGE_FAULT"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidCoordinates, CodeInvalidColor:
		return http.StatusBadRequest
	case CodeCooldownActive:
		return http.StatusTooManyRequests
	case CodeNotFound:
		return http.StatusNotFound
	case CodeStorageFault:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
