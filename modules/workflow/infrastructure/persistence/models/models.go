package models

import (
	"database/sql"
	"time"
)

type Job struct {
	ID            string
	Reference     string
	SubmissionID  string
	CustomerName  string
	CustomerEmail string
	StoreURL      string
	Category      string
	Description   string
	State         string
	QuoteAmount   sql.NullInt64
	QuoteCurrency sql.NullString
	QuotedAt      sql.NullTime
	AcceptedAt    sql.NullTime
	DueAt         sql.NullTime
	HeldAt        sql.NullTime
	HeldFrom      sql.NullString
	CompletedAt   sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
