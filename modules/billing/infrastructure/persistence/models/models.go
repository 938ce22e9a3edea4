package models

import (
	"database/sql"
	"time"
)

type Invoice struct {
	ID               string
	Number           string
	JobID            string
	Kind             string
	Status           string
	NetAmount        int64
	TaxAmount        int64
	Currency         string
	TaxRate          string
	IssuedAt         time.Time
	SentAt           sql.NullTime
	PaidAt           sql.NullTime
	RemindedAt       sql.NullTime
	PaymentMethod    sql.NullString
	PaymentReference sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
