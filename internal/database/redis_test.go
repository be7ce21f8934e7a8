package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("revoke and check", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		b := NewTokenBlacklist(rdb)

		mock.ExpectSet("blacklist:abc", "1", time.Hour).SetVal("OK")
		mock.ExpectGet("blacklist:abc").SetVal("1")
		mock.ExpectGet("blacklist:other").RedisNil()

		require.NoError(t, b.Revoke(ctx, "abc", time.Hour))

		revoked, err := b.IsRevoked(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = b.IsRevoked(ctx, "other")
		require.NoError(t, err)
		assert.False(t, revoked)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error surfaces", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		b := NewTokenBlacklist(rdb)
		mock.ExpectGet("blacklist:abc").SetErr(errors.New("connection refused"))

		_, err := b.IsRevoked(ctx, "abc")
		assert.Error(t, err)
	})

	t.Run("nil client is a no-op", func(t *testing.T) {
		var rdb *redis.Client
		b := NewTokenBlacklist(rdb)

		assert.False(t, b.Enabled())
		assert.NoError(t, b.Revoke(ctx, "abc", time.Hour))
		revoked, err := b.IsRevoked(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
