package wizard

import (
	"sync"

	domain "lead-origination/internal/domain/lead"
)

// MobileState is the step-2 OTP sub-protocol state of one lead.
type MobileState struct {
	CountryCode      string `json:"countryCode"`
	Mobile           string `json:"mobile"`
	OTPSent          bool   `json:"otpSent"`
	IsMobileVerified bool   `json:"isMobileVerified"`
	FailedAttempts   int    `json:"failedAttempts"`
}

// Locked reports whether the number can no longer be edited.
func (m MobileState) Locked() bool { return m.OTPSent || m.IsMobileVerified }

// workspace is the page-local state of one lead between saves.
type workspace struct {
	mu      sync.Mutex
	leadID  string
	mobile  MobileState
	uploads map[int][]domain.Upload
}

func newWorkspace(l *domain.Lead) *workspace {
	ws := &workspace{
		leadID:  l.ID,
		mobile:  MobileState{CountryCode: defaultCountryCode, Mobile: l.CustomerMobile},
		uploads: map[int][]domain.Upload{},
	}
	if s := l.FormData.Step2; s != nil {
		if s.CountryCode != "" {
			ws.mobile.CountryCode = s.CountryCode
		}
		if s.Mobile != "" {
			ws.mobile.Mobile = s.Mobile
		}
		ws.mobile.IsMobileVerified = s.IsMobileVerified
	}
	if s := l.FormData.Step10; s != nil {
		ws.uploads[10] = restoreUploads(s.Uploads)
	}
	if s := l.FormData.Step11; s != nil {
		ws.uploads[11] = restoreUploads(s.Uploads)
	}
	return ws
}

// errInterrupted marks an upload saved while Processing. Its resolve task
// died with the old workspace, so it is restored as Failed and can be retried.
const errInterrupted = "upload interrupted, retry"

func restoreUploads(saved []domain.Upload) []domain.Upload {
	out := append([]domain.Upload(nil), saved...)
	for i := range out {
		if out[i].Status == domain.UploadProcessing {
			out[i].Status = domain.UploadFailed
			out[i].Error = errInterrupted
		}
	}
	return out
}

// snapshot returns a copy of the uploads of step; callers hold ws.mu.
func (ws *workspace) snapshot(step int) []domain.Upload {
	return append([]domain.Upload{}, ws.uploads[step]...)
}

func (ws *workspace) find(step int, uploadID string) int {
	for i, u := range ws.uploads[step] {
		if u.ID == uploadID {
			return i
		}
	}
	return -1
}
