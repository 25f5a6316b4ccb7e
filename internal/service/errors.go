package service

import "errors"

var (
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrEmptyText          = errors.New("text is empty")
	ErrInsufficientData   = errors.New("insufficient training data")
	ErrInvalidLabel       = errors.New("invalid label")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrJobNotFound        = errors.New("retrain job not found")
)
