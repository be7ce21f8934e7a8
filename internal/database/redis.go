package database

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/motoqueiros/backend/internal/config"
	"github.com/motoqueiros/backend/internal/logger"
)

// ConnectRedis returns nil when Redis cannot be reached; callers then run
// without token revocation.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis connection failed, continuing without token revocation", "addr", cfg.Addr(), "error", err)
		_ = rdb.Close()
		return nil
	}

	log.Info("redis connection established", "addr", cfg.Addr())
	return rdb
}

const blacklistPrefix = "blacklist:"

// TokenBlacklist stores revoked token ids until their expiry. A nil client
// turns every call into a no-op.
type TokenBlacklist struct {
	rdb *redis.Client
}

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb}
}

func (b *TokenBlacklist) Enabled() bool {
	return b != nil && b.rdb != nil
}

func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if !b.Enabled() || ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, blacklistPrefix+tokenID, "1", ttl).Err()
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !b.Enabled() {
		return false, nil
	}
	err := b.rdb.Get(ctx, blacklistPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
