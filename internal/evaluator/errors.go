package evaluator

import (
	"errors"
	"fmt"

	"finsmart/internal/core"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvariant matches every *InvariantViolation via errors.Is.
	ErrInvariant = errors.New("invariant violation")
)

// ConfigurationError reports a budget or recurrence definition the evaluator
// refuses to work with, such as a non-positive limit or an unknown period.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// InvariantViolation signals corrupted input data that made a computation
// unable to converge.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}

func (e *InvariantViolation) Is(target error) bool { return target == ErrInvariant }

func unknownPeriod(field string, p core.PeriodKind) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf("unknown period %q", string(p))}
}
