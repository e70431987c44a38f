package services

import (
	"errors"
	"fmt"

	"github.com/otcheredev/clinic-management/internal/policy"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the target row does not exist. Existence is
// resolved before authorization, so a missing row surfaces as 404 even when
// the caller would also have been denied.
var ErrNotFound = errors.New("resource not found")

// ErrConflict is returned when a lifecycle invariant blocks the operation,
// e.g. deleting a clinic that still owns branches or users.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrDenied wraps a policy denial so handlers can map the reason to a
// transport status code.
type ErrDenied struct {
	Reason policy.ErrorKind
}

func (e *ErrDenied) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}

// denied converts a policy decision into an error; callers must only invoke
// it for decisions that are not allowed.
func denied(d policy.Decision) error {
	return &ErrDenied{Reason: d.Reason}
}

// notFoundOr maps gorm's missing-record error to ErrNotFound and wraps
// anything else.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
