package persistence

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/storefixhq/storefix/modules/audit/domain/entities/activitylog"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/repo"
)

const activityColumns = `id, kind, reference, actor, detail, created_at`

type ActivityLogRepository struct{}

func NewActivityLogRepository() activitylog.Repository {
	return &ActivityLogRepository{}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry activitylog.Entry) (activitylog.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return activitylog.Entry{}, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO activity_log (`+activityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID.String(), entry.Kind, entry.Reference, entry.Actor, entry.Detail, entry.CreatedAt,
	)
	if err != nil {
		return activitylog.Entry{}, err
	}
	return entry, nil
}

func buildActivityFilters(params *activitylog.FindParams) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if params == nil {
		return where, args
	}
	if params.Kind != "" {
		args = append(args, params.Kind)
		where = append(where, `kind = $`+strconv.Itoa(len(args)))
	}
	if params.Reference != "" {
		args = append(args, params.Reference)
		where = append(where, `reference = $`+strconv.Itoa(len(args)))
	}
	return where, args
}

func (r *ActivityLogRepository) List(ctx context.Context, params *activitylog.FindParams) ([]activitylog.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildActivityFilters(params)
	q := `SELECT ` + activityColumns + ` FROM activity_log`
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

	var entries []activitylog.Entry
	for rows.Next() {
		var (
			entry activitylog.Entry
			id    string
		)
		if err := rows.Scan(&id, &entry.Kind, &entry.Reference, &entry.Actor, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		entry.ID = parsed
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *ActivityLogRepository) Count(ctx context.Context, params *activitylog.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	where, args := buildActivityFilters(params)
	q := `SELECT COUNT(*) FROM activity_log`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}

	var count int64
	if err := tx.QueryRow(ctx, q, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
