package models

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrEmailTaken              = errors.New("email already registered")
	ErrVerificationUnavailable = errors.New("ai verification is not configured")
	ErrUnsupportedPhoto        = errors.New("unsupported photo")
)
