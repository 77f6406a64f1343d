package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrInvalidInput is returned for requests rejected before any backend call
	ErrInvalidInput = goerr.New("invalid input")

	// ErrGeneration is returned when the LLM call fails or its response does
	// not conform to the output schema
	ErrGeneration = goerr.New("solution generation failed")

	// ErrAuthRequired is returned when an operation needs a logged-in user
	ErrAuthRequired = goerr.New("authentication required")

	ErrInvalidCredential = goerr.New("invalid email or password")
	ErrEmailTaken        = goerr.New("email is already registered")
	ErrResetTokenInvalid = goerr.New("password reset token is invalid or expired")
)
