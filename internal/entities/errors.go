package entities

import (
	"errors"
	"fmt"
)

// Error kinds. Callers map these to user-facing responses with errors.Is.
var (
	// ErrValidation is returned for bad or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an id does not resolve to a record.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the current state forbids the operation.
	ErrConflict = errors.New("conflict")

	// ErrCapacity is returned when no copy is left to lend.
	ErrCapacity = errors.New("capacity exhausted")
)

var (
	ErrBookNotFound        = fmt.Errorf("book %w", ErrNotFound)
	ErrLoanNotFound        = fmt.Errorf("loan %w", ErrNotFound)
	ErrLoanAlreadyReturned = fmt.Errorf("%w: loan has already been returned", ErrConflict)
	ErrBookHasActiveLoans  = fmt.Errorf("%w: book has active loans", ErrConflict)
	ErrNoCopiesAvailable   = fmt.Errorf("%w: no copies available", ErrCapacity)
)

// NewValidationError wraps err (typically ozzo validation.Errors) so that it
// matches ErrValidation while keeping the field details.
func NewValidationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// Validationf builds a validation error from a message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsCapacity(err error) bool   { return errors.Is(err, ErrCapacity) }
