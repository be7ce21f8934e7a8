package access

import (
	"context"
	"testing"

	"github.com/motoqueiros/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPolicy_Check(t *testing.T) {
	policy := DefaultPolicy()
	admin := &Principal{ID: 1, Kind: KindAdmin}
	courier := &Principal{ID: 7, Kind: KindCourier}

	t.Run("missing principal is unauthorized", func(t *testing.T) {
		err := policy.Check(OpCreateEntry, nil)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("admin operations", func(t *testing.T) {
		for _, op := range []Operation{
			OpCreateCourier, OpListCouriers, OpDeleteCourier,
			OpCreateEntry, OpUpdateEntry, OpDeleteEntry, OpGetEntry, OpListEntries,
			OpListTotals, OpPayTotal,
		} {
			assert.NoError(t, policy.Check(op, admin), op)
			assert.ErrorIs(t, policy.Check(op, courier), models.ErrForbidden, op)
		}
	})

	t.Run("dashboard is courier only", func(t *testing.T) {
		assert.NoError(t, policy.Check(OpDashboard, courier))
		assert.ErrorIs(t, policy.Check(OpDashboard, admin), models.ErrForbidden)
	})

	t.Run("logout accepts both kinds", func(t *testing.T) {
		assert.NoError(t, policy.Check(OpLogout, admin))
		assert.NoError(t, policy.Check(OpLogout, courier))
	})

	t.Run("unknown operation is denied", func(t *testing.T) {
		assert.ErrorIs(t, policy.Check(Operation("entry.export"), admin), models.ErrForbidden)
	})

	t.Run("forbidden is not not-found", func(t *testing.T) {
		err := policy.Check(OpPayTotal, courier)
		assert.NotErrorIs(t, err, models.ErrNotFound)
	})
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), &Principal{ID: 3, Kind: KindCourier})
	p, ok := PrincipalFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(3), p.ID)
}
