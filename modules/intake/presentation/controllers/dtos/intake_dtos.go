package dtos

// SubmissionResponse is the envelope the public form consumes. Error and
// ErrorType are only populated outside production.
type SubmissionResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	SubmissionNumber string `json:"submissionNumber,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorType        string `json:"errorType,omitempty"`

	// Fields carries per-field validation messages keyed by the JSON
	// field name.
	Fields map[string]string `json:"fields,omitempty"`
}

type SubmissionView struct {
	ID               string `json:"id"`
	SubmissionNumber string `json:"submissionNumber"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	StoreURL         string `json:"storeUrl,omitempty"`
	Message          string `json:"message,omitempty"`
	HasVoiceNote     bool   `json:"hasVoiceNote"`
	VoiceNoteLink    string `json:"voiceNoteLink,omitempty"`
	Status           string `json:"status"`
	CreatedAt        string `json:"createdAt"`
}

type SubmissionListResponse struct {
	Submissions []SubmissionView `json:"submissions"`
	Total       int64            `json:"total"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}
