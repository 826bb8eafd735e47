// Package services holds the business logic of the content studio: script
// generation, video creation, analytics, users and cost tracking.
//
// This file centralizes service-level error values so they can be returned
// consistently and mapped to HTTP results by the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrScriptNotFound indicates that the requested script does not exist.
	ErrScriptNotFound = errors.New("script not found")

	// ErrVideoNotFound indicates that the requested video does not exist.
	ErrVideoNotFound = errors.New("video not found")

	// ErrUserNotFound indicates that the requested user is not registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrQuotaExceeded is returned when a registered user has used up the
	// allowance of their subscription plan.
	ErrQuotaExceeded = errors.New("plan usage limit reached")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
