package services

import (
	"context"
	"testing"

	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCourierService(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewCourierService(st, NewValidationHelper(), logger.Nop(), bcrypt.MinCost)

	t.Run("create hashes the password", func(t *testing.T) {
		c, err := svc.Create(ctx, CourierInput{Name: " Joao ", Phone: "11999990000", Login: "joao", Password: "segredo1"})
		require.NoError(t, err)
		assert.NotZero(t, c.ID)
		assert.Equal(t, "Joao", c.Name)
		assert.NotEqual(t, "segredo1", c.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte("segredo1")))
	})

	t.Run("duplicate login", func(t *testing.T) {
		_, err := svc.Create(ctx, CourierInput{Name: "Outro", Login: "joao", Password: "segredo2"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, CourierInput{Name: "M", Login: "", Password: "123"})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("list and delete", func(t *testing.T) {
		_, err := svc.Create(ctx, CourierInput{Name: "Ana", Login: "ana", Password: "segredo3"})
		require.NoError(t, err)

		couriers, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, couriers, 2)
		assert.Equal(t, "Ana", couriers[0].Name)

		require.NoError(t, svc.Delete(ctx, couriers[0].ID))
		assert.ErrorIs(t, svc.Delete(ctx, couriers[0].ID), models.ErrNotFound)
	})
}
