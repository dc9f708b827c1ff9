package lead

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewStepData_CoversEveryStep(t *testing.T) {
	for n := FirstStep; n <= FinalStep; n++ {
		d, err := NewStepData(n)
		if err != nil {
			t.Fatalf("step %d: %v", n, err)
		}
		if d.StepNumber() != n {
			t.Fatalf("step %d: StepNumber() = %d", n, d.StepNumber())
		}
	}
	for _, n := range []int{0, 12, -1} {
		if _, err := NewStepData(n); !errors.Is(err, ErrInvalidStep) {
			t.Fatalf("step %d: want ErrInvalidStep, got %v", n, err)
		}
	}
}

func TestFormData_SetGetRoundTrip(t *testing.T) {
	var f FormData
	if f.Get(1) != nil {
		t.Fatal("empty form data must return nil for step1")
	}
	for n := FirstStep; n <= FinalStep; n++ {
		d, _ := NewStepData(n)
		f.Set(d)
		got := f.Get(n)
		if got == nil || got.StepNumber() != n {
			t.Fatalf("step %d not stored", n)
		}
	}
}

func TestFormData_SetCopies(t *testing.T) {
	var f FormData
	in := &ProductStep{ProductType: "secured", BranchCode: "BR001"}
	f.Set(in)
	in.BranchCode = "changed"
	if f.Step1.BranchCode != "BR001" {
		t.Fatalf("Set must copy, got %q", f.Step1.BranchCode)
	}
}

func TestFormData_MergeOnlyPresentSteps(t *testing.T) {
	f := FormData{
		Step1: &ProductStep{ProductType: "secured"},
		Step4: &AddressStep{City: "Pune"},
	}
	f.Merge(FormData{Step4: &AddressStep{City: "Mumbai"}, Step7: &CollateralStep{CollateralType: "land"}})
	if f.Step1 == nil || f.Step1.ProductType != "secured" {
		t.Fatalf("step1 lost: %+v", f.Step1)
	}
	if f.Step4.City != "Mumbai" || f.Step7 == nil {
		t.Fatalf("merge failed: %+v %+v", f.Step4, f.Step7)
	}
}

func TestFormData_JSONKeys(t *testing.T) {
	f := FormData{Step1: &ProductStep{ProductType: "secured", BranchCode: "BR001"}, Step9: &ReviewStep{}}
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["step1"]; !ok {
		t.Fatalf("missing step1 key: %s", b)
	}
	if _, ok := raw["step9"]; !ok {
		t.Fatalf("missing step9 key: %s", b)
	}
	if len(raw) != 2 {
		t.Fatalf("absent steps must be omitted: %s", b)
	}
}

func TestLead_Normalize(t *testing.T) {
	l := Lead{
		CustomerFirstName: " Jane",
		CustomerLastName:  "Doe ",
		CustomerMobile:    "9876543210",
		PANNumber:         "AFZPK7190K",
		LoanAmount:        75000,
		LoanPurpose:       "home",
		FormData: FormData{
			Step2: &ContactStep{FirstName: "old", Mobile: "111"},
			Step3: &PersonalStep{FirstName: "old"},
			Step8: &LoanStep{LoanAmount: 1},
		},
	}
	l.Normalize()
	if l.CustomerName != "Jane Doe" {
		t.Fatalf("CustomerName = %q", l.CustomerName)
	}
	if l.FormData.Step2.FirstName != " Jane" || l.FormData.Step2.Mobile != "9876543210" {
		t.Fatalf("step2 not synced: %+v", l.FormData.Step2)
	}
	if l.FormData.Step3.PAN != "AFZPK7190K" {
		t.Fatalf("step3 not synced: %+v", l.FormData.Step3)
	}
	if l.FormData.Step8.LoanAmount != 75000 || l.FormData.Step8.LoanPurpose != "home" {
		t.Fatalf("step8 not synced: %+v", l.FormData.Step8)
	}
	if l.FormData.Step1 != nil {
		t.Fatal("Normalize must not create steps")
	}
}

func TestLead_NormalizeOnlyLastName(t *testing.T) {
	l := Lead{CustomerLastName: "Doe"}
	l.Normalize()
	if l.CustomerName != "Doe" {
		t.Fatalf("CustomerName = %q, want Doe", l.CustomerName)
	}
}
