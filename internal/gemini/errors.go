package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured is returned before any network call when the API key or
	// model is missing.
	ErrNotConfigured = errors.New("gemini: client not configured")
	// ErrEmptyResponse means the upstream answered successfully but no known
	// response shape carried any text.
	ErrEmptyResponse = errors.New("gemini: response contained no text")
	// ErrGenerationFailed wraps transport-level failures: DNS, connect, timeout,
	// unreadable or non-JSON bodies.
	ErrGenerationFailed = errors.New("gemini: generation request failed")
)

// UpstreamError carries a non-2xx answer from the generation endpoint. Details
// is the response body exactly as received.
type UpstreamError struct {
	Status  int
	Details string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini: upstream responded with %d %s", e.Status, http.StatusText(e.Status))
}

// Temporary reports whether a later attempt could succeed.
func (e *UpstreamError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}
