package validation

import (
	"errors"
	"strings"
	"testing"

	"lead-origination/internal/domain/lead"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestHex32Validation(t *testing.T) {
	type P struct {
		LeadID string `json:"leadId" validate:"hex32"`
	}
	cv := New()

	if err := cv.Validate(P{LeadID: strings.Repeat("a", 32)}); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}
	for _, s := range []string{
		"",
		strings.Repeat("A", 32),
		"deadbeef",
		strings.Repeat("g", 32),
	} {
		err := cv.Validate(P{LeadID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if !containsFieldMsg(ToFieldErrors(err), "leadId", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, ToFieldErrors(err))
		}
	}
}

func TestOTP6Validation(t *testing.T) {
	type P struct {
		Code string `json:"code" validate:"otp6"`
	}
	cv := New()
	if err := cv.Validate(P{Code: "123456"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, c := range []string{"12345", "abcdef", "1234567"} {
		err := cv.Validate(P{Code: c})
		if err == nil || !containsFieldMsg(ToFieldErrors(err), "code", "6-digit") {
			t.Fatalf("expected otp6 error for %q, got %v", c, err)
		}
	}
}

func TestDec2Validation(t *testing.T) {
	type P struct {
		Amount float64 `json:"amount" validate:"dec2"`
	}
	cv := New()

	for _, v := range []float64{1.29, 2.00, 0.9, 2500} {
		if err := cv.Validate(P{Amount: v}); err != nil {
			t.Fatalf("expected dec2 OK for %v, got %v", v, err)
		}
	}
	for _, v := range []float64{1.234, 2.9999} {
		err := cv.Validate(P{Amount: v})
		if err == nil || !containsFieldMsg(ToFieldErrors(err), "amount", "at most 2 decimal places") {
			t.Fatalf("expected dec2 error for %v, got %v", v, err)
		}
	}
}

func TestLeadStatusAndDocType(t *testing.T) {
	type P struct {
		Status string `json:"status" validate:"leadstatus"`
		Type   string `json:"type"   validate:"doctype"`
	}
	cv := New()
	if err := cv.Validate(P{Status: "Approved", Type: "Adhaar"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	err := cv.Validate(P{Status: "approved", Type: "Passport"})
	fe := ToFieldErrors(err)
	if !containsFieldMsg(fe, "status", "Draft") || !containsFieldMsg(fe, "type", "PAN") {
		t.Fatalf("unexpected details: %+v", fe)
	}
}

func TestStepRequiredFieldsUseJSONNames(t *testing.T) {
	cv := New()
	err := cv.Validate(&lead.LoanStep{LoanAmount: 49999, LoanPurpose: lead.PurposeOthers})
	if err == nil {
		t.Fatal("expected errors")
	}
	fe := ToFieldErrors(err)
	if !containsFieldMsg(fe, "loanAmount", "greater than or equal to 50000") {
		t.Fatalf("missing loanAmount detail: %+v", fe)
	}
	if !containsFieldMsg(fe, "customPurpose", "is required") {
		t.Fatalf("missing customPurpose detail: %+v", fe)
	}
	if !containsFieldMsg(fe, "productCode", "is required") {
		t.Fatalf("missing productCode detail: %+v", fe)
	}
}

func TestStepCustomPurposeOnlyForOthers(t *testing.T) {
	cv := New()
	ok := &lead.LoanStep{
		LoanAmount: 50000, LoanPurpose: "home", ProductCode: "HL01",
		LoanBranch: "BR001", AssignedOfficer: "Ananya Rao", SourcingChannel: "branch",
	}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("unexpected err: %v", ToFieldErrors(err))
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 || fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe)
	}
}
