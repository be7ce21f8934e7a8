package access

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("test-secret", 24*time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, claims, err := m.Issue(7, KindCourier)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotEmpty(t, claims.RegisteredClaims.ID)

		p, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), p.ID)
		assert.Equal(t, KindCourier, p.Kind)
		assert.Equal(t, claims.RegisteredClaims.ID, p.TokenID)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), p.ExpiresAt, time.Minute)
	})

	t.Run("unique jti per token", func(t *testing.T) {
		_, c1, err := m.Issue(1, KindAdmin)
		require.NoError(t, err)
		_, c2, err := m.Issue(1, KindAdmin)
		require.NoError(t, err)
		assert.NotEqual(t, c1.RegisteredClaims.ID, c2.RegisteredClaims.ID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := NewTokenManager("other", time.Hour).Issue(1, KindAdmin)
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("test-secret", time.Hour)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := past.Issue(1, KindAdmin)
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown kind", func(t *testing.T) {
		claims := &Claims{ID: 1, Kind: "cliente", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
