package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lead-origination/internal/domain/auth"
	"lead-origination/internal/domain/kv"
	"lead-origination/internal/domain/verify"
	"lead-origination/internal/metrics"

	"go.uber.org/zap"
)

// DefaultPendingTTL bounds the gap between password and OTP.
const DefaultPendingTTL = 5 * time.Minute

// Usecase is the two-phase sign-in: password first, then OTP. The final
// session is persisted under the "user" slot.
type Usecase struct {
	store kv.Store
	creds verify.Authenticator
	otp   verify.OTPValidator
	log   *zap.Logger
	now   func() time.Time
	ttl   time.Duration

	mu      sync.Mutex
	pending *auth.PendingLogin
}

func NewUsecase(store kv.Store, creds verify.Authenticator, otp verify.OTPValidator, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		store: store,
		creds: creds,
		otp:   otp,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		ttl:   DefaultPendingTTL,
	}
}

// Login checks the password. Any failure clears a previous pending login.
func (u *Usecase) Login(ctx context.Context, email, password string) (*auth.PendingLogin, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	user, ok := u.creds.CheckCredentials(strings.TrimSpace(email), password)
	if !ok {
		u.pending = nil
		u.log.Info("login rejected")
		return nil, auth.ErrAuthFailed
	}
	p := &auth.PendingLogin{
		User:        *user,
		MaskedPhone: MaskPhone(user.Phone),
		ExpiresAt:   u.now().Add(u.ttl),
	}
	u.pending = p
	u.log.Info("login accepted, awaiting otp", zap.String("email", user.Email))
	out := *p
	return &out, nil
}

// VerifyOTPAndSignIn completes a pending login and persists the session.
func (u *Usecase) VerifyOTPAndSignIn(ctx context.Context, code string) (*auth.Session, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	p := u.pending
	if p == nil || u.now().After(p.ExpiresAt) {
		u.pending = nil
		return nil, auth.ErrAuthFailed
	}
	if !u.otp.ValidateOTP(strings.TrimSpace(code)) {
		u.pending = nil
		metrics.OTPVerifications.WithLabelValues("login", "failed").Inc()
		return nil, auth.ErrAuthFailed
	}

	s := auth.Session{User: p.User, SignedAt: u.now()}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := u.store.Set(ctx, kv.KeyUser, raw); err != nil {
		u.log.Error("persist session failed", zap.Error(err))
		return nil, fmt.Errorf("persist session: %w", err)
	}
	u.pending = nil
	metrics.OTPVerifications.WithLabelValues("login", "verified").Inc()
	u.log.Info("signed in", zap.String("email", s.User.Email))
	return &s, nil
}

// CurrentUser returns the persisted session.
func (u *Usecase) CurrentUser(ctx context.Context) (*auth.Session, error) {
	raw, err := u.store.Get(ctx, kv.KeyUser)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, auth.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s auth.Session
	if err := json.Unmarshal(raw, &s); err != nil || s.User.Email == "" {
		return nil, auth.ErrUnauthenticated
	}
	return &s, nil
}

func (u *Usecase) Logout(ctx context.Context) error {
	u.mu.Lock()
	u.pending = nil
	u.mu.Unlock()
	if err := u.store.Delete(ctx, kv.KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	u.log.Info("signed out")
	return nil
}

// MaskPhone keeps the country code and the last four digits.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	head := ""
	rest := phone
	if strings.HasPrefix(phone, "+") && len(phone) > 7 {
		head, rest = phone[:3], phone[3:]
	}
	return head + strings.Repeat("*", len(rest)-4) + rest[len(rest)-4:]
}
