package services

import "errors"

var (
	// ErrUnauthorized is returned for mutating operations without a valid session.
	ErrUnauthorized = errors.New("authentication required")
	// ErrValidation is returned for rejected input (bad mood, bad file type/size).
	ErrValidation = errors.New("validation failed")
)
