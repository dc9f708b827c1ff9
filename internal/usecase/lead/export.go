package lead

import (
	"fmt"
	"io"
	"strconv"

	domain "lead-origination/internal/domain/lead"

	"github.com/gocarina/gocsv"
)

type leadCSV struct {
	AppID          string `csv:"App ID"`
	CustomerName   string `csv:"Customer Name"`
	CustomerMobile string `csv:"Mobile"`
	Status         string `csv:"Status"`
	LoanAmount     string `csv:"Loan Amount"`
	LoanPurpose    string `csv:"Loan Purpose"`
	CurrentStep    int    `csv:"Current Step"`
	CreatedAt      string `csv:"Created At"`
	UpdatedAt      string `csv:"Updated At"`
}

// ExportCSV writes the list view rows of leads to w.
func ExportCSV(w io.Writer, leads []domain.Lead) error {
	rows := make([]*leadCSV, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, &leadCSV{
			AppID:          l.AppID,
			CustomerName:   l.CustomerName,
			CustomerMobile: l.CustomerMobile,
			Status:         string(l.Status),
			LoanAmount:     strconv.FormatFloat(l.LoanAmount, 'f', 2, 64),
			LoanPurpose:    l.LoanPurpose,
			CurrentStep:    l.CurrentStep,
			CreatedAt:      l.CreatedAt.Format("2006-01-02 15:04:05"),
			UpdatedAt:      l.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing leads csv: %w", err)
	}
	return nil
}
