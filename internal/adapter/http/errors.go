package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lead-origination/internal/adapter/middleware"
	"lead-origination/internal/domain/auth"
	domain "lead-origination/internal/domain/lead"
	"lead-origination/internal/usecase/wizard"
)

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
}

// bindAndValidate decodes the body into req and runs the registered validator.
// It writes the 400/422 response itself and reports whether the handler may go on.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badBody(c)
	}
	if err := c.Validate(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

// writeError maps use case errors onto status codes.
func writeError(c echo.Context, err error) error {
	if ve, ok := wizard.IsValidation(err); ok {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: ve.Error(), Details: ve.Fields})
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, wizard.ErrUploadNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStep),
		errors.Is(err, wizard.ErrNotDocumentStep):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, wizard.ErrInvalidMobile),
		errors.Is(err, wizard.ErrInvalidOTP),
		errors.Is(err, wizard.ErrDocumentTypeRequired):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrPaymentSettled),
		errors.Is(err, wizard.ErrMobileLocked),
		errors.Is(err, wizard.ErrAlreadyVerified),
		errors.Is(err, wizard.ErrOTPNotSent),
		errors.Is(err, wizard.ErrNotRetryable):
		code = http.StatusConflict
	case errors.Is(err, auth.ErrAuthFailed):
		code = http.StatusUnauthorized
	case errors.Is(err, auth.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error(), "redirect": middleware.LoginRoute})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}
