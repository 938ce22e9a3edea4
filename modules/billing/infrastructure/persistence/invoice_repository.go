package persistence

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/storefixhq/storefix/modules/billing/domain/aggregates/invoice"
	"github.com/storefixhq/storefix/modules/billing/infrastructure/persistence/models"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/repo"
)

const invoiceColumns = `id, number, job_id, kind, status, net_amount, tax_amount, currency,
	tax_rate, issued_at, sent_at, paid_at, reminded_at, payment_method, payment_reference,
	created_at, updated_at`

type InvoiceRepository struct{}

func NewInvoiceRepository() invoice.Repository {
	return &InvoiceRepository{}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := toDBInvoice(inv)
	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		row.ID, row.Number, row.JobID, row.Kind, row.Status, row.NetAmount, row.TaxAmount,
		row.Currency, row.TaxRate, row.IssuedAt, row.SentAt, row.PaidAt, row.RemindedAt,
		row.PaymentMethod, row.PaymentReference, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (invoice.Invoice, error) {
	return r.getOne(ctx, `WHERE id = $1`, id.String())
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (invoice.Invoice, error) {
	return r.getOne(ctx, `WHERE number = $1`, number)
}

func (r *InvoiceRepository) getOne(ctx context.Context, where string, arg any) (invoice.Invoice, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, invoice.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainInvoice(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(s rowScanner) (*models.Invoice, error) {
	var row models.Invoice
	err := s.Scan(
		&row.ID, &row.Number, &row.JobID, &row.Kind, &row.Status, &row.NetAmount,
		&row.TaxAmount, &row.Currency, &row.TaxRate, &row.IssuedAt, &row.SentAt,
		&row.PaidAt, &row.RemindedAt, &row.PaymentMethod, &row.PaymentReference,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := toDBInvoice(inv)
	tag, err := tx.Exec(ctx, `
		UPDATE invoices SET
			status = $2, sent_at = $3, paid_at = $4, reminded_at = $5,
			payment_method = $6, payment_reference = $7, updated_at = $8
		WHERE id = $1`,
		row.ID, row.Status, row.SentAt, row.PaidAt, row.RemindedAt,
		row.PaymentMethod, row.PaymentReference, row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, invoice.ErrNotFound
	}
	return inv, nil
}

func buildInvoiceFilters(params *invoice.FindParams) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if params == nil {
		return where, args
	}
	if params.JobID != uuid.Nil {
		args = append(args, params.JobID.String())
		where = append(where, `job_id = $`+strconv.Itoa(len(args)))
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, `status = $`+strconv.Itoa(len(args)))
	}
	if !params.SentBefore.IsZero() {
		args = append(args, params.SentBefore)
		n := strconv.Itoa(len(args))
		where = append(where,
			`sent_at IS NOT NULL`,
			`sent_at < $`+n,
			`(reminded_at IS NULL OR reminded_at < sent_at)`,
		)
	}
	return where, args
}

func (r *InvoiceRepository) List(ctx context.Context, params *invoice.FindParams) ([]invoice.Invoice, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildInvoiceFilters(params)
	q := `SELECT ` + invoiceColumns + ` FROM invoices`
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

	var invoices []invoice.Invoice
	for rows.Next() {
		row, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		inv, err := toDomainInvoice(row)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) Count(ctx context.Context, params *invoice.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	where, args := buildInvoiceFilters(params)
	q := `SELECT COUNT(*) FROM invoices`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}

	var count int64
	if err := tx.QueryRow(ctx, q, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
