// Package common defines shared constants and sentinel errors used across
// the layers of bujotrack. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors surfaced to the caller as distinct failures.
	ErrorEmailTaken        = errors.New("email already registered")
	ErrProjectNotFound     = errors.New("project not found")
	ErrParentEntryNotFound = errors.New("parent entry not found")
)
