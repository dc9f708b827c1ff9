package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"lead-origination/internal/domain/auth"
	"lead-origination/internal/domain/kv"
	"lead-origination/internal/mockverify"
	"lead-origination/internal/testutil/kvmock"
)

func newUsecase(store kv.Store) *Usecase {
	svc := mockverify.New()
	return NewUsecase(store, svc, svc, nil)
}

func TestLoginThenOTP(t *testing.T) {
	mem := kvmock.NewMemory()
	u := newUsecase(mem)
	ctx := context.Background()

	if _, err := u.CurrentUser(ctx); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated before sign-in, got %v", err)
	}

	p, err := u.Login(ctx, mockverify.LoginEmail, mockverify.LoginPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if p.User.Name != "Ananya Rao" || p.MaskedPhone != "+91******2345" {
		t.Fatalf("unexpected pending login: %+v", p)
	}
	// password alone is not a session
	if _, err := u.CurrentUser(ctx); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated after password only, got %v", err)
	}

	s, err := u.VerifyOTPAndSignIn(ctx, mockverify.ValidOTP)
	if err != nil {
		t.Fatalf("VerifyOTPAndSignIn: %v", err)
	}
	if s.User.Email != mockverify.LoginEmail {
		t.Fatalf("session user = %q", s.User.Email)
	}

	cur, err := u.CurrentUser(ctx)
	if err != nil || cur.User.Email != mockverify.LoginEmail {
		t.Fatalf("CurrentUser = %+v, %v", cur, err)
	}

	if err := u.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := u.CurrentUser(ctx); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated after logout, got %v", err)
	}
}

func TestLogin_GenericFailure(t *testing.T) {
	u := newUsecase(kvmock.NewMemory())
	ctx := context.Background()

	cases := []struct{ email, pw string }{
		{mockverify.LoginEmail, "wrong"},
		{"someone@else.in", mockverify.LoginPassword},
		{"", ""},
	}
	for _, c := range cases {
		_, err := u.Login(ctx, c.email, c.pw)
		if !errors.Is(err, auth.ErrAuthFailed) {
			t.Fatalf("Login(%q) err = %v, want ErrAuthFailed", c.email, err)
		}
		if err.Error() != "invalid credentials" {
			t.Fatalf("error must not say which credential failed: %q", err)
		}
	}
}

func TestVerifyOTP_Failures(t *testing.T) {
	mem := kvmock.NewMemory()
	u := newUsecase(mem)
	ctx := context.Background()

	if _, err := u.VerifyOTPAndSignIn(ctx, mockverify.ValidOTP); !errors.Is(err, auth.ErrAuthFailed) {
		t.Fatalf("no pending login: want ErrAuthFailed, got %v", err)
	}

	_, _ = u.Login(ctx, mockverify.LoginEmail, mockverify.LoginPassword)
	if _, err := u.VerifyOTPAndSignIn(ctx, "000000"); !errors.Is(err, auth.ErrAuthFailed) {
		t.Fatalf("wrong otp: want ErrAuthFailed, got %v", err)
	}
	// a failed OTP drops the pending login
	if _, err := u.VerifyOTPAndSignIn(ctx, mockverify.ValidOTP); !errors.Is(err, auth.ErrAuthFailed) {
		t.Fatalf("after failure: want ErrAuthFailed, got %v", err)
	}
	if mem.Writes(kv.KeyUser) != 0 {
		t.Fatal("no session may be persisted on failure")
	}
}

func TestVerifyOTP_PendingExpires(t *testing.T) {
	u := newUsecase(kvmock.NewMemory())
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	u.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = u.Login(ctx, mockverify.LoginEmail, mockverify.LoginPassword)
	now = now.Add(DefaultPendingTTL + time.Second)
	if _, err := u.VerifyOTPAndSignIn(ctx, mockverify.ValidOTP); !errors.Is(err, auth.ErrAuthFailed) {
		t.Fatalf("expired pending login: want ErrAuthFailed, got %v", err)
	}
}

func TestVerifyOTP_PersistError(t *testing.T) {
	boom := errors.New("boom")
	u := newUsecase(&kvmock.Store{SetFn: func(context.Context, string, []byte) error { return boom }})
	ctx := context.Background()

	_, _ = u.Login(ctx, mockverify.LoginEmail, mockverify.LoginPassword)
	if _, err := u.VerifyOTPAndSignIn(ctx, mockverify.ValidOTP); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
}

func TestCurrentUser_CorruptSlot(t *testing.T) {
	u := newUsecase(&kvmock.Store{GetFn: func(context.Context, string) ([]byte, error) { return []byte("nope"), nil }})
	if _, err := u.CurrentUser(context.Background()); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
}

func TestMaskPhone(t *testing.T) {
	tests := map[string]string{
		"+919820012345": "+91******2345",
		"9820012345":    "******2345",
		"1234":          "1234",
	}
	for in, want := range tests {
		if got := MaskPhone(in); got != want {
			t.Errorf("MaskPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
