package domain

import (
	"errors"
)

var (
	// ErrInvalidInput is returned when caller-supplied input fails validation
	// before any database write.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRequestNotFound is returned when the referenced PA request does not exist.
	ErrRequestNotFound = errors.New("pa request not found")
)
