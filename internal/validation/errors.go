// Package validation screens user-supplied text before it reaches any
// downstream tool or model.
package validation

import "fmt"

// LengthError indicates a field exceeded its maximum allowed length
type LengthError struct {
	Field  string
	Length int
	Max    int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("validation error: %s is %d characters, maximum is %d", e.Field, e.Length, e.Max)
}

// SecurityError indicates the input matched an adversarial-content heuristic.
// The message is deliberately generic: naming the matched pattern would help
// an attacker iterate.
type SecurityError struct {
	Field string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("input for %s contains a suspicious pattern and was rejected", e.Field)
}

// EmptyError indicates a required field was missing or blank after trimming
type EmptyError struct {
	Field string
}

func (e *EmptyError) Error() string {
	return fmt.Sprintf("validation error: %s must not be empty", e.Field)
}
