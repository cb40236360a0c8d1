package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors mapped to HTTP statuses by the controllers.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalid       = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
	ErrPlanLimit     = errors.New("plan limit reached")
	ErrRateLimited   = errors.New("too many requests")
	ErrNotConfigured = errors.New("feature not configured")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// notFound turns gorm's missing-row error into ErrNotFound, naming what
// was looked up.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
