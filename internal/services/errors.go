package services

import (
	"errors"
	"fmt"

	"github.com/jeniistore/jenii-admin/internal/models"
)

var (
	// ErrNotFound is returned when the order, request or product a call
	// targets does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStatus is returned when the admin submits a status value the
	// status endpoint does not accept.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrValidation wraps input validation failures on catalog writes.
	ErrValidation = errors.New("validation failed")
)

// AlreadyProcessedError is returned when a cancellation decision targets a
// request that is no longer PENDING. It carries the request's current status
// so the handler can report what happened first.
type AlreadyProcessedError struct {
	Status models.CancellationStatus
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("cancellation request already processed: %s", e.Status)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
