package domain

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyUnlocked     = errors.New("already unlocked")
	ErrAlreadyCompleted    = errors.New("already completed")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUserNotFound        = errors.New("user not found")
	ErrNotFound            = errors.New("not found")
	ErrReauthRequired      = errors.New("re-authentication required")
	ErrEmailTaken          = errors.New("email already registered")
)
