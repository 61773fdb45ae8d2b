package swipe

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when no acting user is known.
	ErrUnauthorized = errors.New("swipe: unauthorized")

	// ErrForbidden is returned when the acting user does not own the idea.
	ErrForbidden = errors.New("swipe: forbidden")

	// ErrNotFound is returned when the referenced idea does not exist.
	ErrNotFound = errors.New("swipe: not found")

	// ErrInvalidInput is returned when a payload fails validation.
	ErrInvalidInput = errors.New("swipe: invalid input")

	// ErrConflict is returned when a write lost a race it cannot absorb.
	ErrConflict = errors.New("swipe: conflict")

	// ErrUpstream is returned when the datastore fails.
	ErrUpstream = errors.New("swipe: datastore failure")

	// ErrTimeout is returned when a datastore call exceeds the store timeout.
	// errors.Is(ErrTimeout, ErrUpstream) holds.
	ErrTimeout = fmt.Errorf("%w: deadline exceeded", ErrUpstream)
)

// StatusCode maps an error returned by Service to an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
