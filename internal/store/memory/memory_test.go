package memory

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = civil.Date{Year: 2024, Month: 1, Day: 1}

func seedCourier(t *testing.T, s *Store, login string) *models.Courier {
	t.Helper()
	c := &models.Courier{Name: "Joao", Login: login, PasswordHash: "x"}
	require.NoError(t, s.CreateCourier(context.Background(), c))
	return c
}

func TestStore_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("rolls back on error", func(t *testing.T) {
		s := New()
		c := seedCourier(t, s, "joao")

		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.LedgerTx) error {
			require.NoError(t, tx.InsertEntry(ctx, &models.Entry{CourierID: c.ID, Date: day, BasePay: 10}))
			require.NoError(t, tx.InsertTotal(ctx, &models.Total{CourierID: c.ID, Date: day, Amount: 10}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		entries, err := s.Entries(ctx, models.EntryFilter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
		totals, err := s.Totals(ctx, models.TotalFilter{})
		require.NoError(t, err)
		assert.Empty(t, totals)
	})

	t.Run("commits on success", func(t *testing.T) {
		s := New()
		c := seedCourier(t, s, "joao")

		err := s.WithTx(ctx, func(tx store.LedgerTx) error {
			return tx.InsertEntry(ctx, &models.Entry{CourierID: c.ID, Date: day, BasePay: 10})
		})
		require.NoError(t, err)

		entries, err := s.Entries(ctx, models.EntryFilter{CourierID: &c.ID})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("cancelled context discards a successful fn", func(t *testing.T) {
		s := New()
		c := seedCourier(t, s, "joao")

		cctx, cancel := context.WithCancel(ctx)
		err := s.WithTx(cctx, func(tx store.LedgerTx) error {
			require.NoError(t, tx.InsertEntry(cctx, &models.Entry{CourierID: c.ID, Date: day, BasePay: 10}))
			require.NoError(t, tx.InsertTotal(cctx, &models.Total{CourierID: c.ID, Date: day, Amount: 10}))
			cancel()
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)

		entries, err := s.Entries(ctx, models.EntryFilter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
		totals, err := s.Totals(ctx, models.TotalFilter{})
		require.NoError(t, err)
		assert.Empty(t, totals)
	})

	t.Run("unknown courier", func(t *testing.T) {
		s := New()
		err := s.WithTx(ctx, func(tx store.LedgerTx) error {
			return tx.InsertEntry(ctx, &models.Entry{CourierID: 99, Date: day})
		})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("one total per key", func(t *testing.T) {
		s := New()
		c := seedCourier(t, s, "joao")
		err := s.WithTx(ctx, func(tx store.LedgerTx) error {
			require.NoError(t, tx.InsertTotal(ctx, &models.Total{CourierID: c.ID, Date: day}))
			return tx.InsertTotal(ctx, &models.Total{CourierID: c.ID, Date: day})
		})
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}

func TestStore_DeleteCourierCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	keep := seedCourier(t, s, "keep")
	gone := seedCourier(t, s, "gone")

	require.NoError(t, s.WithTx(ctx, func(tx store.LedgerTx) error {
		for _, id := range []int64{keep.ID, gone.ID} {
			if err := tx.InsertEntry(ctx, &models.Entry{CourierID: id, Date: day}); err != nil {
				return err
			}
			if err := tx.InsertTotal(ctx, &models.Total{CourierID: id, Date: day}); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.DeleteCourier(ctx, gone.ID))
	assert.ErrorIs(t, s.DeleteCourier(ctx, gone.ID), models.ErrNotFound)

	entries, _ := s.Entries(ctx, models.EntryFilter{})
	assert.Len(t, entries, 1)
	assert.Equal(t, keep.ID, entries[0].CourierID)

	totals, _ := s.Totals(ctx, models.TotalFilter{})
	assert.Len(t, totals, 1)
	assert.Equal(t, "Joao", totals[0].Courier.Name)
}

func TestStore_Couriers(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedCourier(t, s, "joao")

	err := s.CreateCourier(ctx, &models.Courier{Name: "Outro", Login: "joao"})
	assert.ErrorIs(t, err, models.ErrConflict)

	c, err := s.CourierByLogin(ctx, "joao")
	require.NoError(t, err)
	assert.Equal(t, "Joao", c.Name)

	_, err = s.CourierByLogin(ctx, "maria")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
