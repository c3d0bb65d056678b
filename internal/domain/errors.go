package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("missing or invalid credentials")
	ErrForbidden       = errors.New("no permission to perform this action")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrBadEvent        = errors.New("malformed event payload")
	ErrDeliveryFailed  = errors.New("notification delivery failed")
)
