package invoice_test

import (
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/modules/billing/domain/aggregates/invoice"
)

var issued = time.Date(2025, time.April, 10, 9, 0, 0, 0, time.UTC)

func newInvoice(rate string) invoice.Invoice {
	return invoice.New(
		"INV-20250410-00001",
		uuid.New(),
		invoice.KindFull,
		money.New(45000, money.GBP),
		decimal.RequireFromString(rate),
		issued,
	)
}

func TestInvoice_TaxBreakdown(t *testing.T) {
	t.Parallel()

	inv := newInvoice("0.20")
	assert.Equal(t, int64(45000), inv.Net().Amount())
	assert.Equal(t, int64(9000), inv.Tax().Amount())
	assert.Equal(t, int64(54000), inv.Total().Amount())
}

func TestInvoice_NoTaxWhenNotRegistered(t *testing.T) {
	t.Parallel()

	inv := newInvoice("0")
	assert.Equal(t, int64(0), inv.Tax().Amount())
	assert.Equal(t, int64(45000), inv.Total().Amount())
}

func TestInvoice_TaxRoundsToNearestMinorUnit(t *testing.T) {
	t.Parallel()

	inv := invoice.New(
		"INV-20250410-00002",
		uuid.New(),
		invoice.KindFull,
		money.New(333, money.GBP),
		decimal.RequireFromString("0.20"),
		issued,
	)
	// 333 * 0.20 = 66.6, rounds to 67.
	assert.Equal(t, int64(67), inv.Tax().Amount())
}

func TestInvoice_Lifecycle(t *testing.T) {
	t.Parallel()

	inv := newInvoice("0.20")
	assert.Equal(t, invoice.StatusUnpaid, inv.Status())

	sent, err := inv.MarkSent(issued.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusInvoiced, sent.Status())
	assert.Equal(t, issued.Add(time.Hour), sent.SentAt())

	paid, err := sent.RecordPayment("bank_transfer", "TXN-4471", issued.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, paid.Status())
	assert.Equal(t, "bank_transfer", paid.PaymentMethod())
	assert.Equal(t, "TXN-4471", paid.PaymentReference())
}

func TestInvoice_GuardedTransitions(t *testing.T) {
	t.Parallel()

	inv := newInvoice("0.20")

	// Cannot pay before sending.
	_, err := inv.RecordPayment("card", "", issued)
	require.ErrorIs(t, err, invoice.ErrInvalidTransition)

	sent, err := inv.MarkSent(issued)
	require.NoError(t, err)

	// Sending twice is rejected.
	_, err = sent.MarkSent(issued.Add(time.Hour))
	require.ErrorIs(t, err, invoice.ErrInvalidTransition)

	// Payment needs a method.
	_, err = sent.RecordPayment("", "", issued)
	require.ErrorIs(t, err, invoice.ErrPaymentMethodRequired)

	paid, err := sent.RecordPayment("card", "", issued)
	require.NoError(t, err)

	// Paid is terminal.
	_, err = paid.MarkSent(issued)
	require.ErrorIs(t, err, invoice.ErrInvalidTransition)
	_, err = paid.RecordPayment("card", "", issued)
	require.ErrorIs(t, err, invoice.ErrInvalidTransition)
}
