package persistence

import (
	"database/sql"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"

	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	"github.com/storefixhq/storefix/modules/workflow/infrastructure/persistence/models"
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

func toDBJob(j job.Job) *models.Job {
	row := &models.Job{
		ID:            j.ID().String(),
		Reference:     j.Reference(),
		SubmissionID:  j.SubmissionID().String(),
		CustomerName:  j.CustomerName(),
		CustomerEmail: j.CustomerEmail(),
		StoreURL:      j.StoreURL(),
		Category:      j.Category(),
		Description:   j.Description(),
		State:         string(j.State()),
		QuotedAt:      nullTime(j.QuotedAt()),
		AcceptedAt:    nullTime(j.AcceptedAt()),
		DueAt:         nullTime(j.DueAt()),
		HeldAt:        nullTime(j.HeldAt()),
		CompletedAt:   nullTime(j.CompletedAt()),
		CreatedAt:     j.CreatedAt(),
		UpdatedAt:     j.UpdatedAt(),
	}
	if quote := j.Quote(); quote != nil {
		row.QuoteAmount = sql.NullInt64{Int64: quote.Amount(), Valid: true}
		row.QuoteCurrency = sql.NullString{String: quote.Currency().Code, Valid: true}
	}
	if heldFrom := j.HeldFrom(); heldFrom != "" {
		row.HeldFrom = sql.NullString{String: string(heldFrom), Valid: true}
	}
	return row
}

func toDomainJob(row *models.Job) (job.Job, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, err
	}
	submissionID, err := uuid.Parse(row.SubmissionID)
	if err != nil {
		return nil, err
	}

	opts := []job.Option{
		job.WithID(id),
		job.WithStoreURL(row.StoreURL),
		job.WithCategory(row.Category),
		job.WithDescription(row.Description),
		job.WithState(job.State(row.State)),
		job.WithQuotedAt(fromNullTime(row.QuotedAt)),
		job.WithAcceptedAt(fromNullTime(row.AcceptedAt)),
		job.WithDueAt(fromNullTime(row.DueAt)),
		job.WithCompletedAt(fromNullTime(row.CompletedAt)),
		job.WithCreatedAt(row.CreatedAt),
		job.WithUpdatedAt(row.UpdatedAt),
	}
	if row.QuoteAmount.Valid && row.QuoteCurrency.Valid {
		opts = append(opts, job.WithQuote(money.New(row.QuoteAmount.Int64, row.QuoteCurrency.String)))
	}
	if row.HeldFrom.Valid {
		opts = append(opts, job.WithHold(fromNullTime(row.HeldAt), job.State(row.HeldFrom.String)))
	}
	return job.New(row.Reference, submissionID, row.CustomerName, row.CustomerEmail, opts...), nil
}
