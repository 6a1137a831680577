// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure classes of an API call.
var (
	// ErrStatus matches every *HTTPError.
	ErrStatus = errors.New("unexpected HTTP status")

	// ErrEmptyTerm is returned when a related-terms lookup has no term.
	ErrEmptyTerm = errors.New("enter a term")
)

// HTTPError is returned for any non-2xx response. Body holds the raw
// response text.
type HTTPError struct {
	StatusCode int
	Status     string // e.g. "404 Not Found"
	Body       string
}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %s\n%s", status, e.Body)
}

// Is reports whether target is ErrStatus.
func (e *HTTPError) Is(target error) bool {
	return target == ErrStatus
}

// IsNotFound reports whether err is an HTTP 404 from the API.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}
