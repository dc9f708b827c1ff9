package lead

import (
	"time"

	domain "lead-origination/internal/domain/lead"
	"lead-origination/pkg/id"
)

type seedLead struct {
	first, last, mobile, pan, dob, gender string
	amount                                float64
	purpose                               string
	status                                domain.Status
	step                                  int
	ageDays                               int
}

var seedData = []seedLead{
	{"Rahul", "Sharma", "9876501234", "BNZPS4821L", "1988-03-12", "Male", 750000, "home_renovation", domain.StatusSubmitted, 11, 12},
	{"Priya", "Patel", "9123456780", "CQRPP1934M", "1992-11-02", "Female", 1200000, "business_expansion", domain.StatusApproved, 11, 9},
	{"Vikram", "Singh", "9988776655", "", "1985-07-25", "Male", 0, "", domain.StatusDraft, 4, 5},
	{"Meera", "Iyer", "9090909090", "DKLPI7712Q", "1979-01-30", "Female", 2500000, "education", domain.StatusDisbursed, 11, 21},
	{"Arjun", "Nair", "9812345678", "EMTPN5560R", "1995-09-18", "Male", 300000, "others", domain.StatusRejected, 11, 15},
}

// SeedLeads builds the example collection used on a first start.
func SeedLeads(now time.Time) []domain.Lead {
	out := make([]domain.Lead, 0, len(seedData))
	for i, s := range seedData {
		created := now.AddDate(0, 0, -s.ageDays)
		l := domain.Lead{
			ID:                id.NewID32(),
			AppID:             id.NewAppID(id.FirstAppSeq + i),
			Status:            s.status,
			CustomerFirstName: s.first,
			CustomerLastName:  s.last,
			CustomerMobile:    s.mobile,
			PANNumber:         s.pan,
			DOB:               s.dob,
			Gender:            s.gender,
			LoanAmount:        s.amount,
			LoanPurpose:       s.purpose,
			CurrentStep:       s.step,
			CreatedAt:         created,
			UpdatedAt:         created.Add(2 * time.Hour),
		}
		l.FormData.Step1 = &domain.ProductStep{ProductType: "secured", BranchCode: "BR001 - Mumbai Central"}
		l.FormData.Step2 = &domain.ContactStep{CountryCode: "+91", IsMobileVerified: true}
		if s.step > 3 {
			l.FormData.Step3 = &domain.PersonalStep{ResidentType: "resident"}
		}
		if s.amount > 0 {
			l.FormData.Step8 = &domain.LoanStep{
				ProductCode:     "HL-01",
				LoanBranch:      "BR001 - Mumbai Central",
				AssignedOfficer: "Ananya Rao",
				SourcingChannel: "branch",
			}
			if s.purpose == domain.PurposeOthers {
				l.FormData.Step8.CustomPurpose = "medical"
			}
		}
		if age, ok := domain.AgeOn(l.DOB, now); ok {
			l.Age = age
		}
		l.Normalize()
		out = append(out, l)
	}
	return out
}
