package lead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "lead-origination/internal/domain/lead"
	"lead-origination/internal/domain/kv"
	"lead-origination/internal/metrics"
	"lead-origination/internal/scheduler"
	"lead-origination/pkg/id"

	"go.uber.org/zap"
)

// Usecase is the lead store: an in-memory collection written through to the
// "leads" slot on every mutation. All methods are safe for concurrent use;
// mutations are serialized.
type Usecase struct {
	store       kv.Store
	log         *zap.Logger
	policy      domain.TransitionPolicy
	now         func() time.Time
	statusDelay time.Duration
	linkBase    string

	mu        sync.Mutex
	loaded    bool
	leads     []domain.Lead
	currentID string
}

type Option func(*Usecase)

func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }

// WithPolicy replaces the default any-to-any status policy.
func WithPolicy(p domain.TransitionPolicy) Option { return func(u *Usecase) { u.policy = p } }

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// WithStatusDelay simulates the latency of the status update backend.
func WithStatusDelay(d time.Duration) Option { return func(u *Usecase) { u.statusDelay = d } }

func WithPaymentLinkBase(base string) Option { return func(u *Usecase) { u.linkBase = base } }

func NewUsecase(store kv.Store, opts ...Option) *Usecase {
	u := &Usecase{
		store:    store,
		log:      zap.NewNop(),
		policy:   domain.AnyTransition{},
		now:      func() time.Time { return time.Now().UTC() },
		linkBase: "https://pay.lendingdesk.in/p/",
	}
	for _, o := range opts {
		o(u)
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	return u
}

// Patch is a partial lead update. Nil fields are left alone; FormData steps
// that are present replace the stored step slices. Identity, status and
// timestamps cannot be patched.
type Patch struct {
	CustomerFirstName *string          `json:"customerFirstName,omitempty"`
	CustomerLastName  *string          `json:"customerLastName,omitempty"`
	CustomerMobile    *string          `json:"customerMobile,omitempty"`
	PANNumber         *string          `json:"panNumber,omitempty"`
	DOB               *string          `json:"dob,omitempty"`
	Gender            *string          `json:"gender,omitempty"`
	LoanAmount        *float64         `json:"loanAmount,omitempty"`
	LoanPurpose       *string          `json:"loanPurpose,omitempty"`
	CurrentStep       *int             `json:"currentStep,omitempty"`
	FormData          *domain.FormData `json:"formData,omitempty"`
}

// Load reads the persisted collection, seeding and persisting the example
// leads on first start.
func (u *Usecase) Load(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.ensureLoaded(ctx)
}

func (u *Usecase) ensureLoaded(ctx context.Context) error {
	if u.loaded {
		return nil
	}
	raw, err := u.store.Get(ctx, kv.KeyLeads)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		seeded := SeedLeads(u.now())
		if err := u.persist(ctx, seeded); err != nil {
			return err
		}
		u.leads = seeded
		u.log.Info("lead store seeded", zap.Int("leads", len(seeded)))
	case err != nil:
		return fmt.Errorf("load leads: %w", err)
	default:
		var leads []domain.Lead
		if err := json.Unmarshal(raw, &leads); err != nil {
			return fmt.Errorf("decode leads: %w", err)
		}
		u.leads = leads
		u.log.Info("lead store loaded", zap.Int("leads", len(leads)))
	}
	u.loaded = true
	return nil
}

func (u *Usecase) persist(ctx context.Context, leads []domain.Lead) error {
	if leads == nil {
		leads = []domain.Lead{}
	}
	raw, err := json.Marshal(leads)
	if err != nil {
		return fmt.Errorf("encode leads: %w", err)
	}
	if err := u.store.Set(ctx, kv.KeyLeads, raw); err != nil {
		u.log.Error("persist leads failed", zap.Error(err))
		return fmt.Errorf("persist leads: %w", err)
	}
	return nil
}

func (u *Usecase) indexOf(leadID string) int {
	for i := range u.leads {
		if u.leads[i].ID == leadID {
			return i
		}
	}
	return -1
}

// mutate applies fn to a copy of the lead and persists the whole collection.
// The in-memory state only changes once the write succeeded. A missing lead
// yields (nil, nil).
func (u *Usecase) mutate(ctx context.Context, leadID string, fn func(l *domain.Lead) error) (*domain.Lead, error) {
	if err := u.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	i := u.indexOf(leadID)
	if i < 0 {
		u.log.Debug("mutation on unknown lead ignored", zap.String("lead_id", leadID))
		return nil, nil
	}

	l := u.leads[i].Clone()
	if err := fn(&l); err != nil {
		return nil, err
	}
	l.Normalize()
	l.UpdatedAt = u.now()

	next := make([]domain.Lead, len(u.leads))
	copy(next, u.leads)
	next[i] = l
	if err := u.persist(ctx, next); err != nil {
		return nil, err
	}
	u.leads = next

	out := l.Clone()
	return &out, nil
}

func (u *Usecase) Create(ctx context.Context) (*domain.Lead, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(u.leads))
	appIDs := make([]string, 0, len(u.leads))
	for _, l := range u.leads {
		existing[l.ID] = true
		appIDs = append(appIDs, l.AppID)
	}
	leadID := id.NewID32()
	for existing[leadID] {
		leadID = id.NewID32()
	}

	now := u.now()
	l := domain.Lead{
		ID:          leadID,
		AppID:       id.NextAppID(appIDs),
		Status:      domain.StatusDraft,
		CurrentStep: domain.FirstStep,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := append(append(make([]domain.Lead, 0, len(u.leads)+1), u.leads...), l)
	if err := u.persist(ctx, next); err != nil {
		return nil, err
	}
	u.leads = next
	u.currentID = l.ID

	metrics.LeadsCreated.Inc()
	u.log.Info("lead created", zap.String("lead_id", l.ID), zap.String("app_id", l.AppID))
	out := l.Clone()
	return &out, nil
}

// Update merges a client edit into the lead. Step slices in p.FormData also
// feed the top-level fields they own unless p sets those fields explicitly.
// currentStep only moves forward. The step 2 mobile verification and the
// document uploads stay as the wizard stored them, and a verified mobile
// number cannot change (ErrMobileLocked).
func (u *Usecase) Update(ctx context.Context, leadID string, p Patch) (*domain.Lead, error) {
	return u.update(ctx, leadID, p, false)
}

// SaveStep is Update for the wizard, which owns the mobile verification and
// the uploads and saves them as given.
func (u *Usecase) SaveStep(ctx context.Context, leadID string, p Patch) (*domain.Lead, error) {
	return u.update(ctx, leadID, p, true)
}

func (u *Usecase) update(ctx context.Context, leadID string, p Patch, fromWizard bool) (*domain.Lead, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	out, err := u.mutate(ctx, leadID, func(l *domain.Lead) error {
		if !fromWizard {
			if p.CustomerMobile != nil && *p.CustomerMobile != l.CustomerMobile && mobileVerified(l) {
				return domain.ErrMobileLocked
			}
			if p.FormData != nil {
				fd := keepWizardFields(l, *p.FormData)
				p.FormData = &fd
			}
		}
		if p.FormData != nil {
			l.FormData.Merge(*p.FormData)
			absorbSteps(l, *p.FormData)
		}
		setString(&l.CustomerFirstName, p.CustomerFirstName)
		setString(&l.CustomerLastName, p.CustomerLastName)
		setString(&l.CustomerMobile, p.CustomerMobile)
		setString(&l.PANNumber, p.PANNumber)
		setString(&l.DOB, p.DOB)
		setString(&l.Gender, p.Gender)
		setString(&l.LoanPurpose, p.LoanPurpose)
		if p.LoanAmount != nil {
			l.LoanAmount = *p.LoanAmount
		}
		if p.CurrentStep != nil {
			if !domain.ValidStep(*p.CurrentStep) {
				return fmt.Errorf("%w: %d", domain.ErrInvalidStep, *p.CurrentStep)
			}
			if *p.CurrentStep > l.CurrentStep {
				l.CurrentStep = *p.CurrentStep
			}
		}
		if age, ok := domain.AgeOn(l.DOB, u.now()); ok {
			l.Age = age
		}
		return nil
	})
	if err != nil || out == nil {
		return out, err
	}
	u.log.Info("lead updated", zap.String("lead_id", out.ID), zap.Int("current_step", out.CurrentStep))
	return out, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// absorbSteps copies the values owned by the top level out of freshly written steps.
func mobileVerified(l *domain.Lead) bool {
	return l.FormData.Step2 != nil && l.FormData.Step2.IsMobileVerified
}

// keepWizardFields returns a copy of fd whose wizard-owned fields carry the
// values l already holds.
func keepWizardFields(l *domain.Lead, fd domain.FormData) domain.FormData {
	out := fd.Clone()
	if s := out.Step2; s != nil {
		s.CountryCode, s.Mobile, s.IsMobileVerified = "", "", false
		if cur := l.FormData.Step2; cur != nil {
			s.CountryCode, s.Mobile, s.IsMobileVerified = cur.CountryCode, cur.Mobile, cur.IsMobileVerified
		}
	}
	out.Step10, out.Step11 = nil, nil
	return out
}

func absorbSteps(l *domain.Lead, fd domain.FormData) {
	if s := fd.Step2; s != nil {
		l.CustomerFirstName = s.FirstName
		l.CustomerLastName = s.LastName
		if s.Mobile != "" {
			l.CustomerMobile = s.Mobile
		}
	}
	if s := fd.Step3; s != nil {
		l.CustomerFirstName = s.FirstName
		l.CustomerLastName = s.LastName
		l.DOB = s.DOB
		l.Gender = s.Gender
		l.PANNumber = s.PAN
	}
	if s := fd.Step8; s != nil {
		l.LoanAmount = s.LoanAmount
		l.LoanPurpose = s.LoanPurpose
	}
}

// Submit marks the lead Submitted at the final step. Repeating it is harmless.
func (u *Usecase) Submit(ctx context.Context, leadID string) (*domain.Lead, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	out, err := u.mutate(ctx, leadID, func(l *domain.Lead) error {
		l.Status = domain.StatusSubmitted
		l.CurrentStep = domain.FinalStep
		return nil
	})
	if err != nil || out == nil {
		return out, err
	}
	metrics.LeadsSubmitted.Inc()
	u.log.Info("lead submitted", zap.String("lead_id", out.ID), zap.String("app_id", out.AppID))
	return out, nil
}

// UpdateStatus sets the pipeline status after the simulated backend delay.
// The configured policy decides which moves are legal.
func (u *Usecase) UpdateStatus(ctx context.Context, leadID string, status domain.Status) (*domain.Lead, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	if err := scheduler.Sleep(ctx, u.statusDelay); err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	var from domain.Status
	out, err := u.mutate(ctx, leadID, func(l *domain.Lead) error {
		from = l.Status
		if !u.policy.Allow(from, status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, status)
		}
		l.Status = status
		return nil
	})
	if err != nil || out == nil {
		return out, err
	}
	metrics.LeadStatusChanges.WithLabelValues(string(status)).Inc()
	u.log.Info("lead status changed",
		zap.String("lead_id", out.ID),
		zap.String("from", string(from)),
		zap.String("to", string(status)))
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, leadID string) (*domain.Lead, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	i := u.indexOf(leadID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	out := u.leads[i].Clone()
	return &out, nil
}

// List returns the leads matching f in insertion order.
func (u *Usecase) List(ctx context.Context, f domain.Filter) ([]domain.Lead, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	matched := domain.Apply(u.leads, f)
	for i := range matched {
		matched[i] = matched[i].Clone()
	}
	return matched, nil
}

// Stats counts leads per status.
func (u *Usecase) Stats(ctx context.Context) (map[domain.Status]int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return domain.CountByStatus(u.leads), nil
}

// Current returns the designated current lead, or nil when none is selected.
func (u *Usecase) Current() *domain.Lead {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.currentID == "" {
		return nil
	}
	i := u.indexOf(u.currentID)
	if i < 0 {
		return nil
	}
	out := u.leads[i].Clone()
	return &out
}

func (u *Usecase) SetCurrent(ctx context.Context, leadID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.ensureLoaded(ctx); err != nil {
		return err
	}
	if u.indexOf(leadID) < 0 {
		return domain.ErrNotFound
	}
	u.currentID = leadID
	return nil
}
