package portfolio

import (
	"errors"
	"fmt"
)

// ErrLoadStarted is returned when a load is run more than once.
var ErrLoadStarted = errors.New("page load already started")

// MissingDataError is returned when a required field is absent from the
// fetched documents.
type MissingDataError struct {
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data: %s", e.Field)
}

// RenderTargetMissingError is returned when a template the scenario renders
// was not registered.
type RenderTargetMissingError struct {
	Name string
}

func (e *RenderTargetMissingError) Error() string {
	return fmt.Sprintf("%s template failed to load", e.Name)
}
