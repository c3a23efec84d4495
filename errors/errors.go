package errors

import "errors"

// Sentinel errors for common error conditions
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates that the operation is not authorized
	ErrUnauthorized = errors.New("unauthorized")
)

// Sentinel errors for the generation stream lifecycle
var (
	// ErrNoCredential indicates that no authentication token could be
	// resolved before opening a generation stream
	ErrNoCredential = errors.New("no authentication credential available")

	// ErrGenerationTimeout indicates the generation watchdog fired before a
	// terminal record arrived
	ErrGenerationTimeout = errors.New("recipe generation timed out")

	// ErrStreamClosed indicates the stream ended before a terminal record
	ErrStreamClosed = errors.New("stream closed before completion")
)
