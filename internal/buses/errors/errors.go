package errors

import "errors"

var (
	ErrNotFound = errors.New("bus not found")

	ErrInvalidID = errors.New("invalid bus ID format")

	ErrDuplicateBusNumber = errors.New("bus number is already registered")

	ErrSeatsNotAvailable = errors.New("one or more requested seats are not available")
)
