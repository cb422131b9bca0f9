package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound          = errors.New("domain: not found")
	ErrUnknownCollection = errors.New("domain: unknown collection")
	ErrNotSupported      = errors.New("domain: not supported by backend")
)
