package model

import "errors"

var (
	// Authentication errors. ErrInvalidCredentials deliberately covers both
	// an unknown identifier and a wrong password so responses cannot be used
	// to enumerate accounts.
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrPasswordResetRequired = errors.New("password reset required")

	// User related errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")

	// Task related errors
	ErrTaskNotFound = errors.New("task not found")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
