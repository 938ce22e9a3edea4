package dtos

type CreateJobRequest struct {
	SubmissionID string `json:"submissionId"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Actor        string `json:"actor"`
}

type SendQuoteRequest struct {
	// AmountMinor is the quote in the currency's minor unit (pence,
	// cents).
	AmountMinor int64  `json:"amountMinor"`
	Actor       string `json:"actor"`
}

type ActionRequest struct {
	Actor string `json:"actor"`
}

type JobView struct {
	ID           string `json:"id"`
	Reference    string `json:"reference"`
	SubmissionID string `json:"submissionId"`
	Customer     string `json:"customer"`
	Email        string `json:"email"`
	StoreURL     string `json:"storeUrl,omitempty"`
	Category     string `json:"category,omitempty"`
	Description  string `json:"description,omitempty"`
	State        string `json:"state"`
	Quote        string `json:"quote,omitempty"`
	QuotedAt     string `json:"quotedAt,omitempty"`
	AcceptedAt   string `json:"acceptedAt,omitempty"`
	DueAt        string `json:"dueAt,omitempty"`
	CompletedAt  string `json:"completedAt,omitempty"`
	SLABucket    string `json:"slaBucket,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

type JobListResponse struct {
	Jobs  []JobView `json:"jobs"`
	Total int64     `json:"total"`
}
