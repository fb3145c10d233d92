package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrNoIdentity   = errors.New("no identity bound to session")

	// Points errors
	ErrInvalidAmount  = errors.New("amount must be a positive integer")
	ErrPointsOverflow = errors.New("amount would overflow the points total")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
)
