package validation

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"lead-origination/internal/domain/lead"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reOTP   = regexp.MustCompile(`^\d{6}$`)
)

type Validator struct{ v *validator.Validate }

func New() *Validator {
	v := validator.New()

	// report json names so messages line up with request/step payloads
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// lead id = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("otp6", func(fl validator.FieldLevel) bool {
		return reOTP.MatchString(fl.Field().String())
	})
	// max 2 decimal places
	_ = v.RegisterValidation("dec2", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return math.Abs(f-(math.Round(f*100)/100)) < 1e-9
	})
	_ = v.RegisterValidation("leadstatus", func(fl validator.FieldLevel) bool {
		return lead.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
		s := lead.DocumentType(fl.Field().String())
		for _, t := range lead.RequiredDocuments {
			if s == t {
				return true
			}
		}
		return false
	})

	return &Validator{v: v}
}

// Validate satisfies echo.Validator.
func (cv *Validator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required", "required_if":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "otp6":
			out = append(out, FieldError{Field: field, Message: "must be a 6-digit code"})
		case "dec2":
			out = append(out, FieldError{Field: field, Message: "must have at most 2 decimal places"})
		case "leadstatus":
			out = append(out, FieldError{Field: field, Message: "must be one of Draft, Submitted, Approved, Disbursed, Rejected"})
		case "doctype":
			out = append(out, FieldError{Field: field, Message: "must be one of PAN, Adhaar, BankStatement, CollateralProperty"})
		case "email":
			out = append(out, FieldError{Field: field, Message: "must be a valid email"})
		case "datetime":
			out = append(out, FieldError{Field: field, Message: "must be a date formatted " + e.Param()})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of " + e.Param()})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
