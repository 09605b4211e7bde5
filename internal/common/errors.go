// Package common contains shared constants and sentinel errors used across
// Librarian components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors. Local store write failures wrap
	// ErrPersistence.
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence error")

	// Service-level errors.
	ErrValidation     = errors.New("validation error")
	ErrSyncInProgress = errors.New("sync already in progress")

	// Transport errors. ErrUnavailable wraps ErrNetwork, so callers can
	// match either the broad class or the specific condition.
	ErrNetwork      = errors.New("network error")
	ErrUnavailable  = fmt.Errorf("server unavailable: %w", ErrNetwork)
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServerItem marks a per-item rejection reported inside an otherwise
	// successful push response.
	ErrServerItem = errors.New("server rejected item")

	// Token lifecycle errors (server side).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
