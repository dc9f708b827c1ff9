package wizard

import (
	"errors"
	"fmt"
	"strings"

	domain "lead-origination/internal/domain/lead"
	"lead-origination/internal/validation"
)

var (
	ErrMobileLocked    = domain.ErrMobileLocked
	ErrAlreadyVerified = errors.New("mobile number already verified")
	ErrInvalidMobile   = errors.New("invalid mobile number")
	ErrOTPNotSent      = errors.New("no OTP has been sent")
	ErrInvalidOTP      = errors.New("invalid OTP")

	ErrDocumentTypeRequired = errors.New("select a document type first")
	ErrUploadNotFound       = errors.New("upload not found")
	ErrNotRetryable         = errors.New("only failed uploads can be retried")
	ErrNotDocumentStep      = errors.New("documents can only be uploaded on steps 10 and 11")
)

// ValidationError reports why a step cannot move forward. The user stays on Step.
type ValidationError struct {
	Step   int
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("step %d incomplete: %s", e.Step, strings.Join(parts, "; "))
}
