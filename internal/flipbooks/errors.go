package flipbooks

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrShareNotFound     = errors.New("share not found")
	ErrDuplicate         = errors.New("document already exists")
	ErrInvalidPages      = errors.New("invalid page sequence")
	ErrUnsupportedExport = errors.New("unsupported export format")
)

// MapHTTPStatus translates store errors into HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrShareNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidPages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnsupportedExport):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
