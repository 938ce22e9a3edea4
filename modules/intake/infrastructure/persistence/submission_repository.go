package persistence

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
	"github.com/storefixhq/storefix/modules/intake/infrastructure/persistence/models"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/repo"
)

const submissionColumns = `id, reference, name, email, store_url, message, has_voice_note, voice_note_link, status, created_at`

type SubmissionRepository struct{}

func NewSubmissionRepository() submission.Repository {
	return &SubmissionRepository{}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := toDBSubmission(sub)
	_, err = tx.Exec(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		row.ID, row.Reference, row.Name, row.Email, row.StoreURL,
		row.Message, row.HasVoiceNote, row.VoiceNoteLink, row.Status, row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (submission.Submission, error) {
	return r.getOne(ctx, `WHERE id = $1`, id.String())
}

func (r *SubmissionRepository) GetByReference(ctx context.Context, reference string) (submission.Submission, error) {
	return r.getOne(ctx, `WHERE reference = $1`, reference)
}

func (r *SubmissionRepository) getOne(ctx context.Context, where string, arg any) (submission.Submission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var row models.Submission
	err = tx.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions `+where, arg).Scan(
		&row.ID, &row.Reference, &row.Name, &row.Email, &row.StoreURL,
		&row.Message, &row.HasVoiceNote, &row.VoiceNoteLink, &row.Status, &row.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, submission.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainSubmission(&row)
}

func (r *SubmissionRepository) Update(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := toDBSubmission(sub)
	tag, err := tx.Exec(ctx, `
		UPDATE submissions
		SET status = $2, voice_note_link = $3, has_voice_note = $4
		WHERE id = $1`,
		row.ID, row.Status, row.VoiceNoteLink, row.HasVoiceNote,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, submission.ErrNotFound
	}
	return sub, nil
}

func buildSubmissionFilters(params *submission.FindParams) ([]string, []any) {
	where := []string{"1 = 1"}
	var args []any
	if params == nil {
		return where, args
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if params.Email != "" {
		args = append(args, params.Email)
		where = append(where, "email = $"+strconv.Itoa(len(args)))
	}
	return where, args
}

func (r *SubmissionRepository) List(ctx context.Context, params *submission.FindParams) ([]submission.Submission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args := buildSubmissionFilters(params)
	query := `SELECT ` + submissionColumns + ` FROM submissions
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []submission.Submission
	for rows.Next() {
		var row models.Submission
		if err := rows.Scan(
			&row.ID, &row.Reference, &row.Name, &row.Email, &row.StoreURL,
			&row.Message, &row.HasVoiceNote, &row.VoiceNoteLink, &row.Status, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		sub, err := toDomainSubmission(&row)
		if err != nil {
			return nil, err
		}
		results = append(results, sub)
	}
	return results, rows.Err()
}

func (r *SubmissionRepository) Count(ctx context.Context, params *submission.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildSubmissionFilters(params)
	var count int64
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count)
	return count, err
}

func (r *SubmissionRepository) DeleteAll(ctx context.Context) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM submissions`)
	return err
}
