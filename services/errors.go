package services

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmailTaken           = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrMissingPasswordHash  = errors.New("stored user has no password hash")
	ErrReconcileUnsupported = errors.New("product store has no fallback to reconcile")
)
