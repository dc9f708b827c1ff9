package lead

type DocumentType string

const (
	DocPAN                DocumentType = "PAN"
	DocAdhaar             DocumentType = "Adhaar"
	DocBankStatement      DocumentType = "BankStatement"
	DocCollateralProperty DocumentType = "CollateralProperty"
)

// RequiredDocuments must each have at least one successful upload before the
// strict document step can submit the lead.
var RequiredDocuments = []DocumentType{DocPAN, DocAdhaar, DocBankStatement, DocCollateralProperty}

type UploadStatus string

const (
	UploadProcessing UploadStatus = "Processing"
	UploadSuccess    UploadStatus = "Success"
	UploadFailed     UploadStatus = "Failed"
)

type Upload struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Type   DocumentType `json:"type"`
	Status UploadStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// MissingDocuments returns the required types without a successful upload,
// in RequiredDocuments order.
func MissingDocuments(uploads []Upload) []DocumentType {
	ok := make(map[DocumentType]bool, len(RequiredDocuments))
	for _, u := range uploads {
		if u.Status == UploadSuccess {
			ok[u.Type] = true
		}
	}
	var missing []DocumentType
	for _, t := range RequiredDocuments {
		if !ok[t] {
			missing = append(missing, t)
		}
	}
	return missing
}
