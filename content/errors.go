package content

import (
	"fmt"
	"net/http"
)

// ResourceUnavailableError is returned when a document or template could not
// be fetched: the source failed, answered with a non-success status, or the
// payload was not of the expected kind.
type ResourceUnavailableError struct {
	Path   string
	Status int // zero when the source was unreachable
	Err    error
}

func (e *ResourceUnavailableError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
	}

	return fmt.Sprintf("failed to load %s: %d %s", e.Path, e.Status, http.StatusText(e.Status))
}

func (e *ResourceUnavailableError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the resource does not exist at the source.
func (e *ResourceUnavailableError) NotFound() bool {
	return e.Status == http.StatusNotFound
}
