package model

import (
	"errors"
	"fmt"
)

// ErrValidation matches any input-validation failure.
var ErrValidation = errors.New("invalid request input")

// ErrAuthentication indicates the catalog credential exchange failed.
// It surfaces to the caller as a failed request; there is no retry.
var ErrAuthentication = errors.New("failed to authenticate with catalog")

// ValidationError reports a rejected input before any side effect.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
