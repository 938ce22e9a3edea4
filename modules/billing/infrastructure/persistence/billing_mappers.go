package persistence

import (
	"database/sql"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefixhq/storefix/modules/billing/domain/aggregates/invoice"
	"github.com/storefixhq/storefix/modules/billing/infrastructure/persistence/models"
)

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func fromNullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toDBInvoice(inv invoice.Invoice) *models.Invoice {
	return &models.Invoice{
		ID:               inv.ID().String(),
		Number:           inv.Number(),
		JobID:            inv.JobID().String(),
		Kind:             string(inv.Kind()),
		Status:           string(inv.Status()),
		NetAmount:        inv.Net().Amount(),
		TaxAmount:        inv.Tax().Amount(),
		Currency:         inv.Net().Currency().Code,
		TaxRate:          inv.TaxRate().String(),
		IssuedAt:         inv.IssuedAt(),
		SentAt:           nullTime(inv.SentAt()),
		PaidAt:           nullTime(inv.PaidAt()),
		RemindedAt:       nullTime(inv.RemindedAt()),
		PaymentMethod:    nullString(inv.PaymentMethod()),
		PaymentReference: nullString(inv.PaymentReference()),
		CreatedAt:        inv.CreatedAt(),
		UpdatedAt:        inv.UpdatedAt(),
	}
}

func toDomainInvoice(row *models.Invoice) (invoice.Invoice, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, err
	}
	jobID, err := uuid.Parse(row.JobID)
	if err != nil {
		return nil, err
	}
	taxRate, err := decimal.NewFromString(row.TaxRate)
	if err != nil {
		return nil, err
	}

	opts := []invoice.Option{
		invoice.WithID(id),
		invoice.WithTax(money.New(row.TaxAmount, row.Currency)),
		invoice.WithStatus(invoice.Status(row.Status)),
		invoice.WithSentAt(fromNullTime(row.SentAt)),
		invoice.WithRemindedAt(fromNullTime(row.RemindedAt)),
		invoice.WithCreatedAt(row.CreatedAt),
		invoice.WithUpdatedAt(row.UpdatedAt),
	}
	if row.PaidAt.Valid {
		opts = append(opts, invoice.WithPayment(
			row.PaymentMethod.String,
			row.PaymentReference.String,
			row.PaidAt.Time,
		))
	}
	return invoice.New(
		row.Number,
		jobID,
		invoice.Kind(row.Kind),
		money.New(row.NetAmount, row.Currency),
		taxRate,
		row.IssuedAt,
		opts...,
	), nil
}
