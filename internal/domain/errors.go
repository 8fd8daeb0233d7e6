package domain

import "errors"

// Error taxonomy shared by all services. Specific errors wrap one of these
// so handlers can map them to transport codes with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrAuth             = errors.New("authentication error")
	ErrInvalidState     = errors.New("invalid state")
)
