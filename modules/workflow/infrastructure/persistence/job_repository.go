package persistence

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	"github.com/storefixhq/storefix/modules/workflow/infrastructure/persistence/models"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/repo"
)

const jobColumns = `id, reference, submission_id, customer_name, customer_email, store_url,
	category, description, state, quote_amount, quote_currency, quoted_at, accepted_at,
	due_at, held_at, held_from, completed_at, created_at, updated_at`

type JobRepository struct{}

func NewJobRepository() job.Repository {
	return &JobRepository{}
}

func (r *JobRepository) Create(ctx context.Context, j job.Job) (job.Job, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := toDBJob(j)
	_, err = tx.Exec(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		row.ID, row.Reference, row.SubmissionID, row.CustomerName, row.CustomerEmail,
		row.StoreURL, row.Category, row.Description, row.State, row.QuoteAmount,
		row.QuoteCurrency, row.QuotedAt, row.AcceptedAt, row.DueAt, row.HeldAt,
		row.HeldFrom, row.CompletedAt, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	return r.getOne(ctx, `WHERE id = $1`, id.String())
}

func (r *JobRepository) GetByReference(ctx context.Context, reference string) (job.Job, error) {
	return r.getOne(ctx, `WHERE reference = $1`, reference)
}

func (r *JobRepository) GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (job.Job, error) {
	return r.getOne(ctx, `WHERE submission_id = $1`, submissionID.String())
}

func (r *JobRepository) getOne(ctx context.Context, where string, arg any) (job.Job, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row, err := scanJob(tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, job.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainJob(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(s rowScanner) (*models.Job, error) {
	var row models.Job
	err := s.Scan(
		&row.ID, &row.Reference, &row.SubmissionID, &row.CustomerName, &row.CustomerEmail,
		&row.StoreURL, &row.Category, &row.Description, &row.State, &row.QuoteAmount,
		&row.QuoteCurrency, &row.QuotedAt, &row.AcceptedAt, &row.DueAt, &row.HeldAt,
		&row.HeldFrom, &row.CompletedAt, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *JobRepository) Update(ctx context.Context, j job.Job) (job.Job, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := toDBJob(j)
	tag, err := tx.Exec(ctx, `
		UPDATE jobs SET
			state = $2, quote_amount = $3, quote_currency = $4, quoted_at = $5,
			accepted_at = $6, due_at = $7, held_at = $8, held_from = $9,
			completed_at = $10, updated_at = $11
		WHERE id = $1`,
		row.ID, row.State, row.QuoteAmount, row.QuoteCurrency, row.QuotedAt,
		row.AcceptedAt, row.DueAt, row.HeldAt, row.HeldFrom,
		row.CompletedAt, row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, job.ErrNotFound
	}
	return j, nil
}

// buildJobFilters maps FindParams to WHERE clauses. Bucket filters compare
// due_at against the database clock, which stays close enough to the
// application clock for sweep queries.
func buildJobFilters(params *job.FindParams) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if params == nil {
		return where, args
	}
	if params.State != "" {
		args = append(args, string(params.State))
		where = append(where, `state = $`+strconv.Itoa(len(args)))
	}
	if params.Bucket != job.BucketNone {
		where = append(where, `state IN ('accepted', 'in_progress', 'on_hold')`, `due_at IS NOT NULL`)
		switch params.Bucket {
		case job.BucketOnTrack:
			where = append(where, `due_at - now() >= interval '3 days'`)
		case job.BucketAtRisk:
			where = append(where, `due_at > now()`, `due_at - now() < interval '3 days'`)
		case job.BucketOverdue:
			where = append(where, `due_at <= now()`)
		}
	}
	return where, args
}

func (r *JobRepository) List(ctx context.Context, params *job.FindParams) ([]job.Job, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildJobFilters(params)
	q := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY created_at DESC`
	if params != nil {
		q += ` ` + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []job.Job
	for rows.Next() {
		row, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		j, err := toDomainJob(row)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) Count(ctx context.Context, params *job.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	where, args := buildJobFilters(params)
	q := `SELECT COUNT(*) FROM jobs`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}

	var count int64
	if err := tx.QueryRow(ctx, q, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
