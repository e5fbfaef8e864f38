package ljpw

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by every package built on the model.
// Callers match them with errors.Is; nothing is recovered internally.
var (
	// ErrInvalidInput: non-finite or structurally malformed input, rejected before any work.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionUndefined: a ratio or growth factor with a zero denominator.
	ErrDivisionUndefined = errors.New("division undefined")

	// ErrNumericDivergence: a step produced a non-finite state or velocity.
	ErrNumericDivergence = errors.New("numeric divergence")
)

// DivisionError reports a zero denominator together with the inputs that produced it.
type DivisionError struct {
	Op     string    // what was being divided, e.g. "ratio harmony"
	Inputs []float64 // the denominator operands
}

func (e *DivisionError) Error() string {
	return fmt.Sprintf("%s: zero denominator in %v: %v", e.Op, e.Inputs, ErrDivisionUndefined)
}

// Is lets errors.Is(err, ErrDivisionUndefined) match.
func (e *DivisionError) Is(target error) bool {
	return target == ErrDivisionUndefined
}

// InputError names the offending field of a rejected input.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, ErrInvalidInput)
}

// Is lets errors.Is(err, ErrInvalidInput) match.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid builds an InputError.
func Invalid(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}
