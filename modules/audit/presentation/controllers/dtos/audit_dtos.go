package dtos

type ActivityEntryView struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Reference string `json:"reference"`
	Actor     string `json:"actor,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type ActivityListResponse struct {
	Entries []ActivityEntryView `json:"entries"`
	Total   int64               `json:"total"`
}
