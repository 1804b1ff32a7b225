// Package apperr holds the error kinds shared by the store, the calculator and
// the poller. Every user-facing error is recovered at the command boundary via
// UserMessage; none of them is fatal to the process.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("invalid input")
	ErrCalculation   = errors.New("cannot compute depletion date")
	ErrDuplicateName = errors.New("medication name already exists")
	ErrStore         = errors.New("storage failure")
	ErrTransientPoll = errors.New("reminder check failed")
	ErrNotFound      = errors.New("medication not found")
)

type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ValidationCause is Validation with a classifying cause, such as a range
// sentinel, kept reachable through errors.Is.
func ValidationCause(field, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type CalculationError struct {
	Reason string
	Err    error
}

func Calculation(reason string, err error) *CalculationError {
	return &CalculationError{Reason: reason, Err: err}
}

func (e *CalculationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrCalculation, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrCalculation, e.Reason)
}

func (e *CalculationError) Unwrap() error { return e.Err }

func (e *CalculationError) Is(target error) bool { return target == ErrCalculation }

type DuplicateNameError struct {
	Name       string
	ExistingID uint
}

func DuplicateName(name string, existingID uint) *DuplicateNameError {
	return &DuplicateNameError{Name: name, ExistingID: existingID}
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s: %q (id %d)", ErrDuplicateName, e.Name, e.ExistingID)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// StoreError wraps a failure of the underlying database. The operation that
// raised it has been aborted and left no partial state behind.
type StoreError struct {
	Op  string
	Err error
}

func Store(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s while %s: %v", ErrStore, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// TransientPollError is logged by the poller and never shown to the user.
type TransientPollError struct {
	Stage string
	Err   error
}

func TransientPoll(stage string, err error) *TransientPollError {
	return &TransientPollError{Stage: stage, Err: err}
}

func (e *TransientPollError) Error() string {
	return fmt.Sprintf("%s during %s: %v", ErrTransientPoll, e.Stage, e.Err)
}

func (e *TransientPollError) Unwrap() error { return e.Err }

func (e *TransientPollError) Is(target error) bool { return target == ErrTransientPoll }

// UserMessage renders err as a single line suitable for the presentation layer.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validation *ValidationError
	var calculation *CalculationError
	var duplicate *DuplicateNameError
	var store *StoreError
	switch {
	case errors.As(err, &validation):
		return "Invalid input: " + validation.Error()
	case errors.As(err, &calculation):
		return "Cannot compute the next purchase date: " + calculation.Reason
	case errors.As(err, &duplicate):
		return fmt.Sprintf("A medication named %q already exists; use a different name or edit the existing record", duplicate.Name)
	case errors.Is(err, ErrNotFound):
		return "Medication not found"
	case errors.As(err, &store):
		return "Storage error: " + store.Err.Error()
	default:
		return "Error: " + err.Error()
	}
}
