// Package verify declares the external validation and authentication
// collaborators. The service only depends on these verdicts.
package verify

import (
	"lead-origination/internal/domain/auth"
	"lead-origination/internal/domain/lead"
)

type PANValidator interface {
	ValidatePAN(pan string) bool
}

type OTPValidator interface {
	ValidateOTP(code string) bool
}

// DocumentValidator checks an uploaded file by name and infers its type.
type DocumentValidator interface {
	ValidateDocument(fileName string) (lead.DocumentType, bool)
}

type Authenticator interface {
	CheckCredentials(email, password string) (*auth.User, bool)
}
