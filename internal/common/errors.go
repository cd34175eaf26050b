// Package common defines shared constants and sentinel errors used across
// client and server layers of BoostManager. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Account errors.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrEmailNotConfirmed      = errors.New("email not confirmed")
	ErrAccountLocked          = errors.New("account locked")
	ErrEmailRequired          = errors.New("Email is required")

	// Tenant errors.
	ErrTenantNameTaken      = errors.New("A company with that name is already registered. Please choose another name.")
	ErrOnboardingCompleted  = errors.New("onboarding already completed")
	ErrOnboardingIncomplete = errors.New("onboarding not completed")
	ErrTenantNotAssigned    = errors.New("profile has no tenant")
)
