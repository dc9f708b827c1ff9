// Package wizard drives the eleven-step lead intake. Each step reads the
// shared lead, checks its own required fields, and writes its slice back.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	domain "lead-origination/internal/domain/lead"
	"lead-origination/internal/domain/verify"
	"lead-origination/internal/metrics"
	"lead-origination/internal/scheduler"
	leaduc "lead-origination/internal/usecase/lead"
	"lead-origination/internal/validation"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const (
	defaultCountryCode = "+91"
	defaultRegion      = "IN"

	ReviewStep        = 9
	DocumentsStep     = 10
	RequiredDocsStep  = 11
	RouteLeadList     = "/leads"
	defaultWorkspaces = 256
)

// StepRoute is the client route of a wizard step.
func StepRoute(leadID string, n int) string {
	return "/leads/" + leadID + "/steps/" + strconv.Itoa(n)
}

// LeadStore is the part of the lead store the wizard writes through.
type LeadStore interface {
	Get(ctx context.Context, leadID string) (*domain.Lead, error)
	SaveStep(ctx context.Context, leadID string, p leaduc.Patch) (*domain.Lead, error)
	Submit(ctx context.Context, leadID string) (*domain.Lead, error)
	SetCurrent(ctx context.Context, leadID string) error
}

// Services are the external verdict providers used by the steps.
type Services struct {
	PAN       verify.PANValidator
	OTP       verify.OTPValidator
	Documents verify.DocumentValidator
}

type Config struct {
	OTPDelay      time.Duration
	UploadDelay   time.Duration
	WorkspaceTTL  time.Duration
	MaxWorkspaces int
}

// Transition is the outcome of a navigation: the lead as saved (nil for pure
// navigation), the step to show next (0 for the list view) and its route.
type Transition struct {
	Lead      *domain.Lead `json:"lead,omitempty"`
	NextStep  int          `json:"nextStep"`
	Route     string       `json:"route"`
	Submitted bool         `json:"submitted"`
}

type Sequencer struct {
	leads    LeadStore
	svc      Services
	validate *validation.Validator
	sched    *scheduler.Scheduler
	cfg      Config
	log      *zap.Logger

	wsMu       sync.Mutex
	workspaces *expirable.LRU[string, *workspace]
}

func NewSequencer(leads LeadStore, svc Services, sched *scheduler.Scheduler, cfg Config, log *zap.Logger) *Sequencer {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.WorkspaceTTL <= 0 {
		cfg.WorkspaceTTL = 30 * time.Minute
	}
	if cfg.MaxWorkspaces <= 0 {
		cfg.MaxWorkspaces = defaultWorkspaces
	}
	s := &Sequencer{
		leads:    leads,
		svc:      svc,
		validate: validation.New(),
		sched:    sched,
		cfg:      cfg,
		log:      log,
	}
	s.workspaces = expirable.NewLRU[string, *workspace](cfg.MaxWorkspaces, func(leadID string, _ *workspace) {
		// pending uploads must not resolve into a dropped workspace
		if n := s.sched.CancelGroup(leadID); n > 0 {
			s.log.Debug("workspace evicted", zap.String("lead_id", leadID), zap.Int("cancelled_uploads", n))
		}
	}, cfg.WorkspaceTTL)
	return s
}

func (s *Sequencer) lead(ctx context.Context, leadID string) (*domain.Lead, error) {
	l, err := s.leads.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

// workspace returns the lead's local state, creating it from the saved lead
// on first use. Every access extends its lifetime.
func (s *Sequencer) workspace(l *domain.Lead) *workspace {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	ws, ok := s.workspaces.Get(l.ID)
	if !ok {
		ws = newWorkspace(l)
	}
	s.workspaces.Add(l.ID, ws)
	return ws
}

// Discard drops the local state of a lead and cancels its pending uploads.
func (s *Sequencer) Discard(leadID string) {
	s.workspaces.Remove(leadID)
}

// Enter returns the editable state of step n, pre-populated from the saved
// step slice or, for the steps that own them, from the top-level fields.
func (s *Sequencer) Enter(ctx context.Context, leadID string, n int) (domain.StepData, error) {
	if !domain.ValidStep(n) {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidStep, n)
	}
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	ws := s.workspace(l)

	var state domain.StepData
	if saved := l.FormData.Clone().Get(n); saved != nil {
		state = saved
	} else {
		state, _ = domain.NewStepData(n)
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	switch st := state.(type) {
	case *domain.ContactStep:
		st.FirstName = orDefault(st.FirstName, l.CustomerFirstName)
		st.LastName = orDefault(st.LastName, l.CustomerLastName)
		st.CountryCode = ws.mobile.CountryCode
		st.Mobile = ws.mobile.Mobile
		st.IsMobileVerified = ws.mobile.IsMobileVerified
	case *domain.PersonalStep:
		st.FirstName = orDefault(st.FirstName, l.CustomerFirstName)
		st.LastName = orDefault(st.LastName, l.CustomerLastName)
		st.DOB = orDefault(st.DOB, l.DOB)
		st.Gender = orDefault(st.Gender, l.Gender)
		st.PAN = orDefault(st.PAN, l.PANNumber)
	case *domain.LoanStep:
		if st.LoanAmount == 0 {
			st.LoanAmount = l.LoanAmount
		}
		st.LoanPurpose = orDefault(st.LoanPurpose, l.LoanPurpose)
	case *domain.DocumentsStep:
		st.Uploads = ws.snapshot(DocumentsStep)
	case *domain.RequiredDocumentsStep:
		st.Uploads = ws.snapshot(RequiredDocsStep)
	}
	return state, nil
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// CanProceed checks the required fields of step n. It returns a
// *ValidationError when the step is incomplete.
func (s *Sequencer) CanProceed(ctx context.Context, leadID string, n int, state domain.StepData) error {
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return err
	}
	return s.canProceed(l, n, state)
}

func (s *Sequencer) canProceed(l *domain.Lead, n int, state domain.StepData) error {
	if state == nil || state.StepNumber() != n {
		return fmt.Errorf("%w: state does not belong to step %d", domain.ErrInvalidStep, n)
	}

	var fields []validation.FieldError
	if err := s.validate.Validate(state); err != nil {
		fields = append(fields, validation.ToFieldErrors(err)...)
	}

	ws := s.workspace(l)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	switch st := state.(type) {
	case *domain.ContactStep:
		if !ws.mobile.IsMobileVerified {
			fields = append(fields, validation.FieldError{Field: "mobile", Message: "must be verified via OTP"})
		}
	case *domain.PersonalStep:
		if st.PAN != "" && !s.svc.PAN.ValidatePAN(st.PAN) {
			fields = append(fields, validation.FieldError{Field: "pan", Message: "is not a valid PAN"})
		}
	case *domain.RequiredDocumentsStep:
		if missing := domain.MissingDocuments(ws.uploads[RequiredDocsStep]); len(missing) > 0 {
			fields = append(fields, validation.FieldError{Field: "uploads", Message: "missing required documents: " + joinTypes(missing)})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Step: n, Fields: fields}
	}
	return nil
}

func joinTypes(ts []domain.DocumentType) string {
	out := ""
	for i, t := range ts {
		if i > 0 {
			out += ", "
		}
		out += string(t)
	}
	return out
}

// slice turns the local state into what gets saved: the mobile sub-protocol
// and the uploads are taken from the workspace, not from the client.
func (s *Sequencer) slice(l *domain.Lead, state domain.StepData) domain.FormData {
	ws := s.workspace(l)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	var fd domain.FormData
	switch st := state.(type) {
	case *domain.ContactStep:
		c := *st
		c.CountryCode = ws.mobile.CountryCode
		c.Mobile = ws.mobile.Mobile
		c.IsMobileVerified = ws.mobile.IsMobileVerified
		fd.Set(&c)
	case *domain.DocumentsStep:
		fd.Set(&domain.DocumentsStep{Uploads: ws.snapshot(DocumentsStep)})
	case *domain.RequiredDocumentsStep:
		fd.Set(&domain.RequiredDocumentsStep{Uploads: ws.snapshot(RequiredDocsStep)})
	default:
		fd.Set(state)
	}
	return fd
}

// Next validates step n, saves it, and moves forward. Step 9 either opens
// the document steps or submits; step 11 submits once every required
// document has a successful upload.
func (s *Sequencer) Next(ctx context.Context, leadID string, n int, state domain.StepData) (*Transition, error) {
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := s.canProceed(l, n, state); err != nil {
		s.log.Debug("step not ready", zap.String("lead_id", leadID), zap.Int("step", n), zap.Error(err))
		return nil, err
	}

	fd := s.slice(l, state)
	p := leaduc.Patch{FormData: &fd}
	if n < domain.FinalStep {
		next := n + 1
		p.CurrentStep = &next
	}
	saved, err := s.save(ctx, leadID, p)
	if err != nil {
		return nil, err
	}
	metrics.WizardTransitions.WithLabelValues(strconv.Itoa(n), "next").Inc()

	switch n {
	case ReviewStep:
		if review, _ := state.(*domain.ReviewStep); review != nil && review.MoveToNextStage {
			return &Transition{Lead: saved, NextStep: DocumentsStep, Route: StepRoute(leadID, DocumentsStep)}, nil
		}
		return s.submit(ctx, leadID)
	case RequiredDocsStep:
		return s.submit(ctx, leadID)
	}
	return &Transition{Lead: saved, NextStep: n + 1, Route: StepRoute(leadID, n+1)}, nil
}

func (s *Sequencer) submit(ctx context.Context, leadID string) (*Transition, error) {
	l, err := s.leads.Submit(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	s.Discard(leadID)
	s.log.Info("lead submitted from wizard", zap.String("lead_id", leadID), zap.String("app_id", l.AppID))
	return &Transition{Lead: l, Route: RouteLeadList, Submitted: true}, nil
}

func (s *Sequencer) save(ctx context.Context, leadID string, p leaduc.Patch) (*domain.Lead, error) {
	l, err := s.leads.SaveStep(ctx, leadID, p)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

// Exit saves step n as a draft checkpoint without validation and returns to
// the list. currentStep moves up to n at most.
func (s *Sequencer) Exit(ctx context.Context, leadID string, n int, state domain.StepData) (*Transition, error) {
	if state == nil || state.StepNumber() != n {
		return nil, fmt.Errorf("%w: state does not belong to step %d", domain.ErrInvalidStep, n)
	}
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	fd := s.slice(l, state)
	saved, err := s.save(ctx, leadID, leaduc.Patch{FormData: &fd, CurrentStep: &n})
	if err != nil {
		return nil, err
	}
	metrics.WizardTransitions.WithLabelValues(strconv.Itoa(n), "exit").Inc()
	s.log.Info("step saved as draft", zap.String("lead_id", leadID), zap.Int("step", n))
	return &Transition{Lead: saved, Route: RouteLeadList}, nil
}

// Previous navigates to step n-1. The local state of step n is not saved.
func (s *Sequencer) Previous(ctx context.Context, leadID string, n int) (*Transition, error) {
	if !domain.ValidStep(n) {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidStep, n)
	}
	if _, err := s.lead(ctx, leadID); err != nil {
		return nil, err
	}
	metrics.WizardTransitions.WithLabelValues(strconv.Itoa(n), "previous").Inc()
	if n == domain.FirstStep {
		return &Transition{Route: RouteLeadList}, nil
	}
	return &Transition{NextStep: n - 1, Route: StepRoute(leadID, n-1)}, nil
}

// Resume makes the lead current and opens the step it last reached.
func (s *Sequencer) Resume(ctx context.Context, leadID string) (*Transition, error) {
	if err := s.leads.SetCurrent(ctx, leadID); err != nil {
		return nil, err
	}
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	step := l.CurrentStep
	if !domain.ValidStep(step) {
		step = domain.FirstStep
	}
	return &Transition{Lead: l, NextStep: step, Route: StepRoute(leadID, step)}, nil
}

// IsValidation reports whether err is a step validation failure.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
