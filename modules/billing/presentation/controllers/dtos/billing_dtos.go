package dtos

type GenerateInvoiceRequest struct {
	JobID string `json:"jobId"`
	Kind  string `json:"kind"`
	// AmountMinor is optional for full and balance invoices, required for
	// deposits.
	AmountMinor int64  `json:"amountMinor,omitempty"`
	Actor       string `json:"actor"`
}

type RecordPaymentRequest struct {
	Method    string `json:"method"`
	Reference string `json:"reference,omitempty"`
	Actor     string `json:"actor"`
}

type ActionRequest struct {
	Actor string `json:"actor"`
}

type InvoiceView struct {
	ID               string `json:"id"`
	Number           string `json:"number"`
	JobID            string `json:"jobId"`
	Kind             string `json:"kind"`
	Status           string `json:"status"`
	Net              string `json:"net"`
	Tax              string `json:"tax"`
	Total            string `json:"total"`
	TaxRate          string `json:"taxRate"`
	IssuedAt         string `json:"issuedAt"`
	SentAt           string `json:"sentAt,omitempty"`
	PaidAt           string `json:"paidAt,omitempty"`
	PaymentMethod    string `json:"paymentMethod,omitempty"`
	PaymentReference string `json:"paymentReference,omitempty"`
}

type InvoiceListResponse struct {
	Invoices []InvoiceView `json:"invoices"`
	Total    int64         `json:"total"`
}

type SweepResponse struct {
	Reminded int `json:"reminded"`
}
