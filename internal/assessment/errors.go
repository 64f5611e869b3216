package assessment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidProfile     = errors.New("invalid energy profile")
	ErrInvalidAssumptions = errors.New("invalid assumptions")
	// ErrNumericOverflow is returned when valid inputs still drive a computed
	// figure to NaN or an infinity.
	ErrNumericOverflow = errors.New("numeric overflow")
)

// FieldError describes one rejected input value.
type FieldError struct {
	Field    string `json:"field"`
	Value    any    `json:"value"`
	Expected string `json:"expected"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s = %v, expected %s", e.Field, e.Value, e.Expected)
}

// ValidationError lists every problem found in one input. It unwraps to
// ErrInvalidProfile, ErrInvalidAssumptions or ErrNumericOverflow.
type ValidationError struct {
	kind     error
	Problems []FieldError `json:"problems"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%v: %s", e.kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.kind
}

type validator struct {
	kind     error
	problems []FieldError
}

func newValidator(kind error) *validator {
	return &validator{kind: kind}
}

func (v *validator) check(ok bool, field string, value any, expected string) {
	if !ok {
		v.problems = append(v.problems, FieldError{Field: field, Value: value, Expected: expected})
	}
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{kind: v.kind, Problems: v.problems}
}
