package heightmap

import (
	"errors"
	"fmt"
	"strings"
)

const maxErrorBodyPreview = 200

// ErrFetch indicates that elevations could not be fetched.
var ErrFetch = errors.New("elevation fetch failed")

// A FetchError carries the HTTP context of a failed elevation request.
type FetchError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Cause      error
}

func (e *FetchError) Error() string {
	parts := []string{ErrFetch.Error()}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if requestLine := strings.TrimSpace(e.Method + " " + e.URL); requestLine != "" {
		parts = append(parts, requestLine)
	}
	if preview := compactBodyPreview(e.Body); preview != "" {
		parts = append(parts, fmt.Sprintf("body=%q", preview))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}
	return strings.Join(parts, "; ")
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

func compactBodyPreview(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if len(body) > maxErrorBodyPreview {
		return body[:maxErrorBodyPreview] + "..."
	}
	return body
}
