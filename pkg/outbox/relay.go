package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Relay polls an outbox table and hands pending rows to a Dispatcher.
// Failed rows are rescheduled with exponential backoff; rows that exhaust
// MaxAttempts are marked dead and stay in the table for operator inspection,
// so a lost email is discoverable rather than silently dropped.
type Relay struct {
	pool       *pgxpool.Pool
	table      pgx.Identifier
	dispatcher Dispatcher
	opts       RelayOptions

	tableLabel string
}

func NewRelay(pool *pgxpool.Pool, table pgx.Identifier, dispatcher Dispatcher, opts RelayOptions) (*Relay, error) {
	if pool == nil {
		return nil, invalidConfig("pool is required")
	}
	if len(table) == 0 {
		return nil, invalidConfig("table is required")
	}
	if dispatcher == nil {
		return nil, invalidConfig("dispatcher is required")
	}

	opts.setDefaults()

	r := &Relay{
		pool:       pool,
		table:      table,
		dispatcher: dispatcher,
		opts:       opts,
		tableLabel: tableLabel(table),
	}
	if r.opts.Logger == nil {
		r.opts.Logger = logrusNop()
	}
	return r, nil
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.ProcessBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.opts.Logger.WithError(err).Error("outbox: batch failed")
			}
		}
	}
}

type pendingRow struct {
	sequence int64
	topic    string
	eventID  uuid.UUID
	payload  []byte
	attempts int
}

// ProcessBatch claims up to BatchSize pending rows and dispatches them.
// Exported so batch commands (and tests) can drain the table without the
// polling loop.
func (r *Relay) ProcessBatch(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	table := r.table.Sanitize()
	rows, err := tx.Query(ctx, `
		SELECT sequence, topic, event_id, payload, attempts
		FROM `+table+`
		WHERE dispatched_at IS NULL AND NOT dead AND available_at <= now()
		ORDER BY sequence
		LIMIT $1
		FOR UPDATE SKIP LOCKED`,
		r.opts.BatchSize,
	)
	if err != nil {
		return err
	}

	var pending []pendingRow
	for rows.Next() {
		var row pendingRow
		if err := rows.Scan(&row.sequence, &row.topic, &row.eventID, &row.payload, &row.attempts); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, row := range pending {
		r.dispatchRow(ctx, tx, table, row)
	}

	return tx.Commit(ctx)
}

func (r *Relay) dispatchRow(ctx context.Context, tx pgx.Tx, table string, row pendingRow) {
	dispatchCtx, cancel := context.WithTimeout(ctx, r.opts.DispatchTimeout)
	err := r.dispatcher.Dispatch(dispatchCtx, DispatchedMessage{
		Meta: Meta{
			Table:    r.table,
			Topic:    row.topic,
			EventID:  row.eventID,
			Sequence: row.sequence,
			Attempts: row.attempts,
		},
		Payload: row.payload,
	})
	cancel()

	if err == nil {
		if _, execErr := tx.Exec(ctx,
			`UPDATE `+table+` SET dispatched_at = now(), last_error = NULL WHERE sequence = $1`,
			row.sequence,
		); execErr != nil {
			r.opts.Logger.WithError(execErr).Error("outbox: mark dispatched failed")
			return
		}
		dispatchTotal.WithLabelValues(r.tableLabel, row.topic).Inc()
		return
	}

	attempts := row.attempts + 1
	lastError := truncateError(err, r.opts.LastErrorMaxLen)

	if attempts >= r.opts.MaxAttempts {
		if _, execErr := tx.Exec(ctx,
			`UPDATE `+table+` SET dead = TRUE, attempts = $1, last_error = $2 WHERE sequence = $3`,
			attempts, lastError, row.sequence,
		); execErr != nil {
			r.opts.Logger.WithError(execErr).Error("outbox: mark dead failed")
			return
		}
		deadLetters.WithLabelValues(r.tableLabel, row.topic).Inc()
		r.opts.Logger.WithField("sequence", row.sequence).
			WithField("topic", row.topic).
			WithError(err).
			Error("outbox: message dead after max attempts")
		return
	}

	availableAt := time.Now().Add(r.retryDelay(attempts))
	if _, execErr := tx.Exec(ctx,
		`UPDATE `+table+` SET attempts = $1, last_error = $2, available_at = $3 WHERE sequence = $4`,
		attempts, lastError, availableAt, row.sequence,
	); execErr != nil {
		r.opts.Logger.WithError(execErr).Error("outbox: reschedule failed")
		return
	}
	dispatchFailures.WithLabelValues(r.tableLabel, row.topic).Inc()
}

// retryDelay doubles from one second per failed attempt up to MaxBackoff,
// plus random jitter so competing relay instances spread their retries.
func (r *Relay) retryDelay(attempts int) time.Duration {
	if attempts <= 0 {
		return 0
	}
	shift := uint(attempts - 1)
	if shift > 30 {
		shift = 30
	}
	delay := time.Second << shift
	if delay > r.opts.MaxBackoff {
		delay = r.opts.MaxBackoff
	}
	if r.opts.JitterMax > 0 && r.opts.Rand != nil {
		delay += time.Duration(r.opts.Rand.Int63n(int64(r.opts.JitterMax) + 1)) //nolint:gosec
	}
	return delay
}
