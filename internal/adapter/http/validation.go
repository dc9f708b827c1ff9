package http

import "lead-origination/internal/validation"

type FieldError = validation.FieldError

type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// NewValidator is the echo.Validator used for request bodies.
func NewValidator() *validation.Validator { return validation.New() }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError { return validation.ToFieldErrors(err) }
