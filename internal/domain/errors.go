package domain

import "errors"

// Sentinel errors for the application. Services wrap them with context;
// handlers classify them with errors.Is.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("resource already exists")
	ErrValidation       = errors.New("validation failed")
	ErrRejectedUpload   = errors.New("upload rejected")
	ErrInvalidOperation = errors.New("invalid operation")
)
