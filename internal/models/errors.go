package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the booking lifecycle. Services return these (possibly
// wrapped) and handlers map them to HTTP status codes.
var (
	// ErrUnauthorized means the caller carries no valid identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the booking or offer does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the booking exists but belongs to someone else.
	ErrForbidden = errors.New("forbidden")

	// ErrCapacityExceeded means the offer has fewer units available than
	// requested. Use CapacityError to report the exact numbers.
	ErrCapacityExceeded = errors.New("insufficient capacity")

	// ErrInvalidTransition means the requested status change is not allowed
	// from the booking's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSweepInProgress means another sweep already holds the sweep lock.
	ErrSweepInProgress = errors.New("sweep already in progress")

	// ErrOfferBusy means another hold on the same offer is in flight; the
	// client should retry shortly.
	ErrOfferBusy = errors.New("offer is busy")

	// ErrValidation wraps request validation failures.
	ErrValidation = errors.New("invalid request")
)

// CapacityError reports how many units were available versus requested when
// a hold failed. It unwraps to ErrCapacityExceeded.
type CapacityError struct {
	Available int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: %d available, %d requested", e.Available, e.Requested)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}
