package auth

import (
	"errors"
	"time"
)

var (
	// ErrAuthFailed is deliberately generic: it never says which credential was wrong.
	ErrAuthFailed      = errors.New("invalid credentials")
	ErrUnauthenticated = errors.New("not signed in")
)

type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone"`
}

// PendingLogin is the state between a good password and a good OTP.
type PendingLogin struct {
	User        User      `json:"user"`
	MaskedPhone string    `json:"maskedPhone"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Session is what gets persisted under the "user" slot after OTP sign-in.
type Session struct {
	User     User      `json:"user"`
	SignedAt time.Time `json:"signedAt"`
}
