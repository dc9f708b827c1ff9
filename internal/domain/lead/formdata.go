package lead

import (
	"fmt"
	"strconv"
)

// StepData is one wizard page's slice of FormData. Implementations are used
// through pointers.
type StepData interface {
	StepNumber() int
}

// StepKey is the persisted key of a step slice ("step1".."step11").
func StepKey(n int) string { return "step" + strconv.Itoa(n) }

func ValidStep(n int) bool { return n >= FirstStep && n <= FinalStep }

type ProductStep struct {
	ProductType string `json:"productType" validate:"required"`
	BranchCode  string `json:"branchCode"  validate:"required"`
}

type ContactStep struct {
	CountryCode      string `json:"countryCode"`
	Mobile           string `json:"mobile"`
	IsMobileVerified bool   `json:"isMobileVerified"`
	FirstName        string `json:"firstName"  validate:"required"`
	MiddleName       string `json:"middleName,omitempty"`
	LastName         string `json:"lastName"   validate:"required"`
	Email            string `json:"email,omitempty" validate:"omitempty,email"`
}

type PersonalStep struct {
	FirstName     string `json:"firstName"    validate:"required"`
	LastName      string `json:"lastName"     validate:"required"`
	DOB           string `json:"dob"          validate:"required,datetime=2006-01-02"`
	Gender        string `json:"gender,omitempty"`
	ResidentType  string `json:"residentType" validate:"required"`
	PAN           string `json:"pan,omitempty"`
	FatherName    string `json:"fatherName,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty"`
}

type AddressStep struct {
	AddressType  string `json:"addressType"  validate:"required"`
	Country      string `json:"country"      validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postalCode"   validate:"required"`
}

type CoApplicant struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Mobile       string `json:"mobile,omitempty"`
	PAN          string `json:"pan,omitempty"`
}

type CoApplicantStep struct {
	CoApplicants []CoApplicant `json:"coApplicants"`
}

type Guarantor struct {
	Name         string  `json:"name"`
	Relationship string  `json:"relationship,omitempty"`
	Mobile       string  `json:"mobile,omitempty"`
	NetWorth     float64 `json:"netWorth,omitempty"`
}

type GuarantorStep struct {
	Guarantors []Guarantor `json:"guarantors"`
}

type CollateralStep struct {
	CollateralType  string  `json:"collateralType" validate:"required"`
	OwnershipType   string  `json:"ownershipType"  validate:"required"`
	PropertyValue   float64 `json:"propertyValue"  validate:"gt=0"`
	PropertyAddress string  `json:"propertyAddress,omitempty"`
	Description     string  `json:"description,omitempty"`
}

// PurposeOthers is the loan purpose that requires a free-text custom purpose.
const PurposeOthers = "others"

// MinLoanAmount is the smallest loan amount the desk originates.
const MinLoanAmount = 50000

type LoanStep struct {
	LoanAmount      float64 `json:"loanAmount"      validate:"gte=50000"`
	LoanPurpose     string  `json:"loanPurpose"     validate:"required"`
	CustomPurpose   string  `json:"customPurpose,omitempty" validate:"required_if=LoanPurpose others"`
	ProductCode     string  `json:"productCode"     validate:"required"`
	LoanBranch      string  `json:"loanBranch"      validate:"required"`
	AssignedOfficer string  `json:"assignedOfficer" validate:"required"`
	SourcingChannel string  `json:"sourcingChannel" validate:"required"`
	TenureMonths    int     `json:"tenureMonths,omitempty"`
	InterestRate    float64 `json:"interestRate,omitempty"`
}

type ReviewStep struct {
	MoveToNextStage bool   `json:"moveToNextStage"`
	Remarks         string `json:"remarks,omitempty"`
}

type DocumentsStep struct {
	Uploads []Upload `json:"uploads"`
}

type RequiredDocumentsStep struct {
	Uploads []Upload `json:"uploads"`
}

func (ProductStep) StepNumber() int           { return 1 }
func (ContactStep) StepNumber() int           { return 2 }
func (PersonalStep) StepNumber() int          { return 3 }
func (AddressStep) StepNumber() int           { return 4 }
func (CoApplicantStep) StepNumber() int       { return 5 }
func (GuarantorStep) StepNumber() int         { return 6 }
func (CollateralStep) StepNumber() int        { return 7 }
func (LoanStep) StepNumber() int              { return 8 }
func (ReviewStep) StepNumber() int            { return 9 }
func (DocumentsStep) StepNumber() int         { return 10 }
func (RequiredDocumentsStep) StepNumber() int { return 11 }

// FormData holds at most one typed slice per step.
type FormData struct {
	Step1  *ProductStep           `json:"step1,omitempty"`
	Step2  *ContactStep           `json:"step2,omitempty"`
	Step3  *PersonalStep          `json:"step3,omitempty"`
	Step4  *AddressStep           `json:"step4,omitempty"`
	Step5  *CoApplicantStep       `json:"step5,omitempty"`
	Step6  *GuarantorStep         `json:"step6,omitempty"`
	Step7  *CollateralStep        `json:"step7,omitempty"`
	Step8  *LoanStep              `json:"step8,omitempty"`
	Step9  *ReviewStep            `json:"step9,omitempty"`
	Step10 *DocumentsStep         `json:"step10,omitempty"`
	Step11 *RequiredDocumentsStep `json:"step11,omitempty"`
}

// NewStepData returns an empty, addressable slice for step n.
func NewStepData(n int) (StepData, error) {
	switch n {
	case 1:
		return &ProductStep{}, nil
	case 2:
		return &ContactStep{CountryCode: "+91"}, nil
	case 3:
		return &PersonalStep{}, nil
	case 4:
		return &AddressStep{}, nil
	case 5:
		return &CoApplicantStep{CoApplicants: []CoApplicant{}}, nil
	case 6:
		return &GuarantorStep{Guarantors: []Guarantor{}}, nil
	case 7:
		return &CollateralStep{}, nil
	case 8:
		return &LoanStep{}, nil
	case 9:
		return &ReviewStep{}, nil
	case 10:
		return &DocumentsStep{Uploads: []Upload{}}, nil
	case 11:
		return &RequiredDocumentsStep{Uploads: []Upload{}}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidStep, n)
}

// Get returns the stored slice for step n, or nil when the step was never saved.
func (f FormData) Get(n int) StepData {
	switch n {
	case 1:
		if f.Step1 != nil {
			return f.Step1
		}
	case 2:
		if f.Step2 != nil {
			return f.Step2
		}
	case 3:
		if f.Step3 != nil {
			return f.Step3
		}
	case 4:
		if f.Step4 != nil {
			return f.Step4
		}
	case 5:
		if f.Step5 != nil {
			return f.Step5
		}
	case 6:
		if f.Step6 != nil {
			return f.Step6
		}
	case 7:
		if f.Step7 != nil {
			return f.Step7
		}
	case 8:
		if f.Step8 != nil {
			return f.Step8
		}
	case 9:
		if f.Step9 != nil {
			return f.Step9
		}
	case 10:
		if f.Step10 != nil {
			return f.Step10
		}
	case 11:
		if f.Step11 != nil {
			return f.Step11
		}
	}
	return nil
}

// Set replaces the slice owned by d's step with a copy of d.
func (f *FormData) Set(d StepData) {
	switch v := d.(type) {
	case *ProductStep:
		c := *v
		f.Step1 = &c
	case *ContactStep:
		c := *v
		f.Step2 = &c
	case *PersonalStep:
		c := *v
		f.Step3 = &c
	case *AddressStep:
		c := *v
		f.Step4 = &c
	case *CoApplicantStep:
		c := CoApplicantStep{CoApplicants: append([]CoApplicant(nil), v.CoApplicants...)}
		f.Step5 = &c
	case *GuarantorStep:
		c := GuarantorStep{Guarantors: append([]Guarantor(nil), v.Guarantors...)}
		f.Step6 = &c
	case *CollateralStep:
		c := *v
		f.Step7 = &c
	case *LoanStep:
		c := *v
		f.Step8 = &c
	case *ReviewStep:
		c := *v
		f.Step9 = &c
	case *DocumentsStep:
		c := DocumentsStep{Uploads: append([]Upload(nil), v.Uploads...)}
		f.Step10 = &c
	case *RequiredDocumentsStep:
		c := RequiredDocumentsStep{Uploads: append([]Upload(nil), v.Uploads...)}
		f.Step11 = &c
	}
}

// Merge copies every step present in other over f.
func (f *FormData) Merge(other FormData) {
	for n := FirstStep; n <= FinalStep; n++ {
		if d := other.Get(n); d != nil {
			f.Set(d)
		}
	}
}

// Clone returns a FormData whose step slices are not shared with f.
func (f FormData) Clone() FormData {
	var out FormData
	out.Merge(f)
	return out
}
