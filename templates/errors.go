package templates

import "fmt"

// TemplateUnavailableError is returned when a template could not be fetched
// or compiled.
type TemplateUnavailableError struct {
	Name string
	Err  error
}

func (e *TemplateUnavailableError) Error() string {
	return fmt.Sprintf("template '%s' not available: %v", e.Name, e.Err)
}

func (e *TemplateUnavailableError) Unwrap() error {
	return e.Err
}
