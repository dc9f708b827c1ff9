// Package mockverify is the fixed-answer stand-in for the PAN, OTP, document
// and login services.
package mockverify

import (
	"strings"

	"lead-origination/internal/domain/auth"
	"lead-origination/internal/domain/lead"
	"lead-origination/internal/domain/verify"
)

const (
	ValidPAN = "AFZPK7190K"
	ValidOTP = "123456"

	LoginEmail    = "officer@lendingdesk.in"
	LoginPassword = "Lead@2024"
)

// DocumentFiles maps the only accepted file names to their document type.
// Names must match exactly.
var DocumentFiles = map[string]lead.DocumentType{
	"pan_card.pdf":          lead.DocPAN,
	"aadhaar_card.pdf":      lead.DocAdhaar,
	"bank_statement.pdf":    lead.DocBankStatement,
	"property_document.pdf": lead.DocCollateralProperty,
}

var officer = auth.User{
	Email: LoginEmail,
	Name:  "Ananya Rao",
	Role:  "Loan Officer",
	Phone: "+919820012345",
}

var (
	_ verify.PANValidator      = Service{}
	_ verify.OTPValidator      = Service{}
	_ verify.DocumentValidator = Service{}
	_ verify.Authenticator     = Service{}
)

type Service struct{}

func New() Service { return Service{} }

func (Service) ValidatePAN(pan string) bool {
	return strings.EqualFold(strings.TrimSpace(pan), ValidPAN)
}

func (Service) ValidateOTP(code string) bool { return code == ValidOTP }

func (Service) ValidateDocument(fileName string) (lead.DocumentType, bool) {
	t, ok := DocumentFiles[fileName]
	return t, ok
}

func (Service) CheckCredentials(email, password string) (*auth.User, bool) {
	if email != LoginEmail || password != LoginPassword {
		return nil, false
	}
	u := officer
	return &u, true
}

// FileNameFor returns the accepted file name for a document type.
func FileNameFor(t lead.DocumentType) (string, bool) {
	for name, dt := range DocumentFiles {
		if dt == t {
			return name, true
		}
	}
	return "", false
}
