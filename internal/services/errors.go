package services

import "errors"

// Errors surfaced to the request boundary. Handlers map these onto
// status codes; none are fatal to the process.
var (
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password
	// so the caller cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOTP covers wrong, expired, consumed, and never-issued
	// codes alike so the caller cannot learn code freshness.
	ErrInvalidOTP = errors.New("invalid or expired OTP")

	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("not found")
	ErrVehicleUnavailable = errors.New("vehicle is not available")
	ErrAlreadyProcessed   = errors.New("sale request already processed")
)
