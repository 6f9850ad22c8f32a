package format

import (
	"errors"
	"fmt"

	"nestfix/internal/detect"
)

var (
	// ErrUnterminatedTemplate is returned by FormatScript when a template
	// literal or one of its ${} interpolations is still open at EOF.
	ErrUnterminatedTemplate = errors.New("unterminated template literal")
	// ErrEnginePanic wraps a panic recovered from a format engine.
	ErrEnginePanic = errors.New("format engine panicked")
)

// FailureError reports that an engine could not format the text. Format never
// returns it to callers as an error; it is attached to Result for diagnostics.
type FailureError struct {
	Kind detect.Kind
	Err  error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("format %s: %v", e.Kind, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }
