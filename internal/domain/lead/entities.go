package lead

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "Draft"
	StatusSubmitted Status = "Submitted"
	StatusApproved  Status = "Approved"
	StatusDisbursed Status = "Disbursed"
	StatusRejected  Status = "Rejected"
)

// Statuses lists every pipeline label in display order.
var Statuses = []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusDisbursed, StatusRejected}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

const (
	FirstStep = 1
	FinalStep = 11
)

// Lead is the single aggregate of the lead desk. Top-level customer and loan
// fields are authoritative; the copies nested in FormData follow them.
type Lead struct {
	ID     string `json:"id"`
	AppID  string `json:"appId"`
	Status Status `json:"status"`

	CustomerName      string `json:"customerName"`
	CustomerFirstName string `json:"customerFirstName"`
	CustomerLastName  string `json:"customerLastName"`
	CustomerMobile    string `json:"customerMobile"`
	PANNumber         string `json:"panNumber"`
	DOB               string `json:"dob"`
	Age               int    `json:"age"`
	Gender            string `json:"gender"`

	LoanAmount  float64 `json:"loanAmount"`
	LoanPurpose string  `json:"loanPurpose"`

	CurrentStep int      `json:"currentStep"`
	FormData    FormData `json:"formData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Payments []PaymentSession `json:"payments,omitempty"`
}

// Normalize recomputes derived fields and pushes the authoritative top-level
// values into the nested step copies that exist.
func (l *Lead) Normalize() {
	l.CustomerName = strings.TrimSpace(l.CustomerFirstName + " " + l.CustomerLastName)

	if s := l.FormData.Step2; s != nil {
		s.FirstName = l.CustomerFirstName
		s.LastName = l.CustomerLastName
		if l.CustomerMobile != "" {
			s.Mobile = l.CustomerMobile
		}
	}
	if s := l.FormData.Step3; s != nil {
		s.FirstName = l.CustomerFirstName
		s.LastName = l.CustomerLastName
		s.DOB = l.DOB
		s.Gender = l.Gender
		s.PAN = l.PANNumber
	}
	if s := l.FormData.Step8; s != nil {
		s.LoanAmount = l.LoanAmount
		s.LoanPurpose = l.LoanPurpose
	}
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

type PaymentTimeline struct {
	CreatedAt  time.Time  `json:"createdAt"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
	ReceivedAt *time.Time `json:"receivedAt,omitempty"`
}

// PaymentSession is a generated collection link for a fee owed on a lead.
type PaymentSession struct {
	ID       string          `json:"id"`
	FeeType  string          `json:"feeType"`
	Amount   decimal.Decimal `json:"amount"`
	Status   PaymentStatus   `json:"status"`
	Link     string          `json:"link"`
	Timeline PaymentTimeline `json:"timeline"`
}

// DateLayout is the wire format of dates of birth.
const DateLayout = "2006-01-02"

// AgeOn returns the completed years between dob and now.
func AgeOn(dob string, now time.Time) (int, bool) {
	d, err := time.Parse(DateLayout, dob)
	if err != nil || d.After(now) {
		return 0, false
	}
	age := now.Year() - d.Year()
	if now.Month() < d.Month() || (now.Month() == d.Month() && now.Day() < d.Day()) {
		age--
	}
	return age, true
}

// Clone returns a deep copy of l.
func (l Lead) Clone() Lead {
	out := l
	out.FormData = l.FormData.Clone()
	if l.Payments != nil {
		out.Payments = make([]PaymentSession, len(l.Payments))
		copy(out.Payments, l.Payments)
	}
	return out
}
