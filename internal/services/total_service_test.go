package services

import (
	"context"
	"testing"

	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalService(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	joao := seedCourier(t, st, "joao")
	maria := seedCourier(t, st, "maria")
	ledger := newLedgerService(st)
	svc := NewTotalService(st, NewValidationHelper(), logger.Nop())

	for _, in := range []EntryInput{
		{CourierID: joao.ID, Date: "2024-01-01", BasePay: 10},
		{CourierID: joao.ID, Date: "2024-01-02", BasePay: 20},
		{CourierID: maria.ID, Date: "2024-01-02", BasePay: 30},
	} {
		_, err := ledger.CreateEntry(ctx, in)
		require.NoError(t, err)
	}

	t.Run("newest first with courier", func(t *testing.T) {
		totals, err := svc.List(ctx, TotalQuery{})
		require.NoError(t, err)
		require.Len(t, totals, 3)
		assert.Equal(t, jan2, totals[0].Date)
		assert.Equal(t, jan1, totals[2].Date)
		require.NotNil(t, totals[2].Courier)
		assert.Equal(t, "Joao", totals[2].Courier.Name)
	})

	t.Run("filters", func(t *testing.T) {
		totals, err := svc.List(ctx, TotalQuery{CourierID: &joao.ID, Date: "2024-01-02"})
		require.NoError(t, err)
		require.Len(t, totals, 1)
		assert.Equal(t, 20.0, totals[0].Amount)

		_, err = svc.List(ctx, TotalQuery{Date: "2024/01/02"})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("mark paid is idempotent and survives reconciliation", func(t *testing.T) {
		totals, err := svc.List(ctx, TotalQuery{CourierID: &maria.ID})
		require.NoError(t, err)
		require.Len(t, totals, 1)

		paid, err := svc.MarkPaid(ctx, totals[0].ID)
		require.NoError(t, err)
		assert.True(t, paid.Paid)
		assert.Equal(t, 30.0, paid.Amount)

		_, err = svc.MarkPaid(ctx, totals[0].ID)
		require.NoError(t, err)

		_, err = ledger.CreateEntry(ctx, EntryInput{CourierID: maria.ID, Date: "2024-01-02", BasePay: 5})
		require.NoError(t, err)

		totals, err = svc.List(ctx, TotalQuery{CourierID: &maria.ID})
		require.NoError(t, err)
		require.Len(t, totals, 1)
		assert.True(t, totals[0].Paid)
		assert.Equal(t, 35.0, totals[0].Amount)
	})

	t.Run("unknown total", func(t *testing.T) {
		_, err := svc.MarkPaid(ctx, 999)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
