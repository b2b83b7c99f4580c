// Package ingest provides document upload validation and the staged
// conversion pipeline that turns a source file into an ordered sequence of
// page records with progress reporting.
package ingest

import (
	"errors"
	"net/http"
)

// Domain errors for ingestion operations.
var (
	ErrNoFile          = errors.New("no file supplied")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrStageFailed     = errors.New("ingest stage failed")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoFile) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnsupportedType) {
		return http.StatusUnsupportedMediaType
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrStageFailed) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
