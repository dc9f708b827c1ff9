package mockverify

import (
	"testing"

	"lead-origination/internal/domain/lead"
)

func TestValidatePAN(t *testing.T) {
	s := New()
	tests := []struct {
		in   string
		want bool
	}{
		{"AFZPK7190K", true},
		{"afzpk7190k", true},
		{" AFZPK7190K ", true},
		{"AAAAA0000A", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := s.ValidatePAN(tt.in); got != tt.want {
			t.Fatalf("ValidatePAN(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateOTP(t *testing.T) {
	s := New()
	if !s.ValidateOTP("123456") {
		t.Fatal("mock code must pass")
	}
	for _, c := range []string{"654321", "12345", "1234567", ""} {
		if s.ValidateOTP(c) {
			t.Fatalf("code %q must fail", c)
		}
	}
}

func TestValidateDocument(t *testing.T) {
	s := New()
	for name, want := range DocumentFiles {
		got, ok := s.ValidateDocument(name)
		if !ok || got != want {
			t.Fatalf("%s => (%s,%v), want %s", name, got, ok, want)
		}
	}
	for _, name := range []string{"selfie.jpg", "PAN_CARD.PDF", "Pan_Card.pdf", " pan_card.pdf", "pan_card.pdf ", ""} {
		if got, ok := s.ValidateDocument(name); ok {
			t.Fatalf("%q => %s, want invalid", name, got)
		}
	}
}

func TestCheckCredentials(t *testing.T) {
	s := New()
	u, ok := s.CheckCredentials(LoginEmail, LoginPassword)
	if !ok || u.Email != LoginEmail || u.Phone == "" {
		t.Fatalf("valid login failed: %+v %v", u, ok)
	}
	if _, ok := s.CheckCredentials(LoginEmail, "wrong"); ok {
		t.Fatal("wrong password accepted")
	}
	if _, ok := s.CheckCredentials("nobody@x.in", LoginPassword); ok {
		t.Fatal("unknown user accepted")
	}
}

func TestFileNameFor(t *testing.T) {
	for _, dt := range lead.RequiredDocuments {
		name, ok := FileNameFor(dt)
		if !ok {
			t.Fatalf("no file for %s", dt)
		}
		if got, _ := New().ValidateDocument(name); got != dt {
			t.Fatalf("round trip %s => %s", dt, got)
		}
	}
}
