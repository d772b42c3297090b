package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPaymentInput() NewPaymentInput {
	return NewPaymentInput{
		TenantID:      uuid.New(),
		UnitID:        uuid.New(),
		Type:          PaymentTypeRent,
		Amount:        valueobject.NewMoneyUSDFromFloat(1000),
		Method:        PaymentMethodCard,
		PeriodMonth:   1,
		PeriodYear:    2026,
		TransactionID: "txn_0001",
	}
}

func TestNewPayment(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		p, err := NewPayment(validPaymentInput())
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPending, p.Status)
		assert.Nil(t, p.PaidAt)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("rejects missing transaction id", func(t *testing.T) {
		in := validPaymentInput()
		in.TransactionID = "  "
		_, err := NewPayment(in)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		in := validPaymentInput()
		in.Amount = valueobject.NewMoneyUSDFromFloat(-5)
		_, err := NewPayment(in)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rent requires a period", func(t *testing.T) {
		in := validPaymentInput()
		in.PeriodMonth = 0
		_, err := NewPayment(in)
		assert.True(t, shared.IsValidation(err))

		in = validPaymentInput()
		in.PeriodMonth = 13
		_, err = NewPayment(in)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("non-rent must not carry a period", func(t *testing.T) {
		in := validPaymentInput()
		in.Type = PaymentTypeDeposit
		_, err := NewPayment(in)
		assert.True(t, shared.IsValidation(err))

		in.PeriodMonth, in.PeriodYear = 0, 0
		_, err = NewPayment(in)
		assert.NoError(t, err)
	})
}

func TestPayment_StatusProgression(t *testing.T) {
	t.Run("pending to processing to completed", func(t *testing.T) {
		p, _ := NewPayment(validPaymentInput())
		paidAt := time.Now()

		require.NoError(t, p.MarkProcessing())
		require.NoError(t, p.Complete(paidAt))

		assert.Equal(t, PaymentStatusCompleted, p.Status)
		require.NotNil(t, p.PaidAt)
		assert.Equal(t, paidAt, *p.PaidAt)
	})

	t.Run("pending can complete directly", func(t *testing.T) {
		p, _ := NewPayment(validPaymentInput())
		assert.NoError(t, p.Complete(time.Now()))
	})

	t.Run("completed never regresses", func(t *testing.T) {
		p, _ := NewPayment(validPaymentInput())
		require.NoError(t, p.Complete(time.Now()))

		assert.True(t, shared.IsConflict(p.MarkProcessing()))
		assert.True(t, shared.IsConflict(p.Fail("late failure")))
		assert.Equal(t, PaymentStatusCompleted, p.Status)
	})

	t.Run("failed is terminal", func(t *testing.T) {
		p, _ := NewPayment(validPaymentInput())
		require.NoError(t, p.Fail("card declined"))
		assert.Equal(t, "card declined", p.FailureReason)

		assert.True(t, shared.IsConflict(p.Complete(time.Now())))
		assert.True(t, shared.IsConflict(p.MarkProcessing()))
	})

	t.Run("refund requires completed", func(t *testing.T) {
		p, _ := NewPayment(validPaymentInput())
		assert.True(t, shared.IsConflict(p.Refund()))

		require.NoError(t, p.Complete(time.Now()))
		require.NoError(t, p.Refund())
		assert.Equal(t, PaymentStatusRefunded, p.Status)
	})

	t.Run("same status is a conflict", func(t *testing.T) {
		p, _ := NewPayment(validPaymentInput())
		require.NoError(t, p.MarkProcessing())
		assert.True(t, shared.IsConflict(p.MarkProcessing()))
	})
}
