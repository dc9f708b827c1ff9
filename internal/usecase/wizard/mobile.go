package wizard

import (
	"context"
	"strings"

	"lead-origination/internal/metrics"
	"lead-origination/internal/scheduler"

	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"
)

// Mobile returns the OTP state of the lead's step 2.
func (s *Sequencer) Mobile(ctx context.Context, leadID string) (MobileState, error) {
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return MobileState{}, err
	}
	ws := s.workspace(l)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.mobile, nil
}

// MobileEditable reports ErrMobileLocked when the live workspace has a code
// out or a verified number and mobile differs from it.
func (s *Sequencer) MobileEditable(leadID, mobile string) error {
	ws, ok := s.workspaces.Peek(leadID)
	if !ok {
		return nil
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.mobile.Mobile != mobile && ws.mobile.Locked() {
		return ErrMobileLocked
	}
	return nil
}

// AdoptMobile takes a number saved outside the wizard into the live
// workspace, unless the number is locked there.
func (s *Sequencer) AdoptMobile(leadID, mobile string) {
	ws, ok := s.workspaces.Peek(leadID)
	if !ok {
		return
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if !ws.mobile.Locked() {
		ws.mobile.Mobile = mobile
	}
}

// SendOTP sends (or resends) a code to the number. Once a code is out the
// number is locked until ResetMobile.
func (s *Sequencer) SendOTP(ctx context.Context, leadID, countryCode, mobile string) (MobileState, error) {
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return MobileState{}, err
	}
	countryCode = strings.TrimSpace(countryCode)
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	mobile = strings.TrimSpace(mobile)

	ws := s.workspace(l)
	ws.mu.Lock()
	st := ws.mobile
	ws.mu.Unlock()

	if st.IsMobileVerified {
		return st, ErrAlreadyVerified
	}
	if st.OTPSent && (st.Mobile != mobile || st.CountryCode != countryCode) {
		return st, ErrMobileLocked
	}
	if !possibleNumber(countryCode, mobile) {
		return st, ErrInvalidMobile
	}

	if err := scheduler.Sleep(ctx, s.cfg.OTPDelay); err != nil {
		return st, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.mobile.IsMobileVerified {
		return ws.mobile, ErrAlreadyVerified
	}
	ws.mobile.CountryCode = countryCode
	ws.mobile.Mobile = mobile
	ws.mobile.OTPSent = true
	s.log.Info("otp sent", zap.String("lead_id", leadID), zap.String("mobile", maskTail(mobile)))
	return ws.mobile, nil
}

// VerifyOTP checks code against the sent OTP. On success the number is
// verified and the OTP entry closes; on failure nothing changes except the
// attempt counter.
func (s *Sequencer) VerifyOTP(ctx context.Context, leadID, code string) (MobileState, error) {
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return MobileState{}, err
	}
	ws := s.workspace(l)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.mobile.IsMobileVerified {
		return ws.mobile, ErrAlreadyVerified
	}
	if !ws.mobile.OTPSent {
		return ws.mobile, ErrOTPNotSent
	}
	if !s.svc.OTP.ValidateOTP(strings.TrimSpace(code)) {
		ws.mobile.FailedAttempts++
		metrics.OTPVerifications.WithLabelValues("mobile", "failed").Inc()
		return ws.mobile, ErrInvalidOTP
	}
	ws.mobile.IsMobileVerified = true
	ws.mobile.OTPSent = false
	ws.mobile.FailedAttempts = 0
	metrics.OTPVerifications.WithLabelValues("mobile", "verified").Inc()
	s.log.Info("mobile verified", zap.String("lead_id", leadID))
	return ws.mobile, nil
}

// ResetMobile unlocks the number by dropping any sent OTP and verification.
func (s *Sequencer) ResetMobile(ctx context.Context, leadID string) (MobileState, error) {
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return MobileState{}, err
	}
	ws := s.workspace(l)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.mobile.OTPSent = false
	ws.mobile.IsMobileVerified = false
	ws.mobile.FailedAttempts = 0
	return ws.mobile, nil
}

func possibleNumber(countryCode, mobile string) bool {
	if mobile == "" {
		return false
	}
	num, err := phonenumbers.Parse(countryCode+mobile, defaultRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}

func maskTail(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	return strings.Repeat("*", len(mobile)-4) + mobile[len(mobile)-4:]
}
