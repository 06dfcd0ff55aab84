package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the upstream system has no such resource.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller may not access the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest is returned when the upstream system rejected the request.
	ErrBadRequest = errors.New("rejected by upstream")

	// ErrUnavailable is returned for upstream 5xx answers.
	ErrUnavailable = errors.New("upstream unavailable")
)

// UpstreamError is a non-2xx answer from an upstream system. Reason carries
// the upstream explanation (Warning header, GraphQL error code or body).
type UpstreamError struct {
	System string
	Status int
	Reason string
}

func (e *UpstreamError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s svarte %d", e.System, e.Status)
	}
	return fmt.Sprintf("%s svarte %d: %s", e.System, e.Status, e.Reason)
}

// Unwrap maps the status to one of the package sentinels so callers can use
// errors.Is without knowing which system answered.
func (e *UpstreamError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status >= 500:
		return ErrUnavailable
	case e.Status >= 400:
		return ErrBadRequest
	}
	return nil
}
