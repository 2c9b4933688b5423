package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for workflow operations. Upstream and configuration
// failures come from the provider package.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrAlreadyFinal      = fmt.Errorf("%w: already in a terminal state", ErrInvalidTransition)
	ErrPersistence       = errors.New("persistence failed")
	ErrQueueFull         = errors.New("analysis queue is full")
	ErrPoolStopped       = errors.New("analysis pool stopped")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func persistenceError(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
