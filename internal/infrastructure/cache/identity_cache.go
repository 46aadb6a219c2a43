package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	"github.com/oksasatya/go-finance-tracker/pkg/helpers"
)

func identityKey(userID string) string {
	return "user:identity:" + userID
}

// IdentityCache keeps password-free identities in Redis so the
// authentication gate can skip the document store on hot paths.
// Redis errors are logged and treated as misses.
type IdentityCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewIdentityCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *IdentityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IdentityCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *IdentityCache) Get(ctx context.Context, id string) (*entity.SafeUser, bool) {
	var u entity.SafeUser
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, identityKey(id), &u)
	if err != nil {
		c.warn("identity cache get failed", err, id)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &u, true
}

func (c *IdentityCache) Set(ctx context.Context, u *entity.SafeUser) {
	if err := helpers.RedisSetJSON(ctx, c.rdb, identityKey(u.ID), u, c.ttl); err != nil {
		c.warn("identity cache set failed", err, u.ID)
	}
}

func (c *IdentityCache) Invalidate(ctx context.Context, id string) {
	if err := helpers.RedisDel(ctx, c.rdb, identityKey(id)); err != nil {
		c.warn("identity cache invalidate failed", err, id)
	}
}

func (c *IdentityCache) warn(msg string, err error, id string) {
	if c.logger != nil {
		helpers.LogWarn(c.logger, msg, err, logrus.Fields{"user_id": id})
	}
}
