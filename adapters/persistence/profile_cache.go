package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/devprofiles/internal/application/service"
	"github.com/khoahotran/devprofiles/internal/domain/profile"
)

const (
	profileKeyPrefix    = "profile:owner:"
	profileListKey      = "profile:all"
	profileGenPrefix    = "profile:gen:owner:"
	profileListGenKey   = "profile:gen:all"
	generationTTLFactor = 4
)

// setIfGeneration stores ARGV[2] at KEYS[2] only while KEYS[1] still holds
// the generation in ARGV[1]. A missing generation key reads as 0.
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

type redisProfileCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisProfileCache caches joined profiles for ttl. Generation keys live
// several ttls so an in-flight fill always sees a bump that happened after
// its read.
func NewRedisProfileCache(rdb redis.UniversalClient, ttl time.Duration) service.ProfileCache {
	return &redisProfileCache{rdb: rdb, ttl: ttl}
}

func profileKey(ownerID uuid.UUID) string {
	return profileKeyPrefix + ownerID.String()
}

func profileGenKey(ownerID uuid.UUID) string {
	return profileGenPrefix + ownerID.String()
}

func (c *redisProfileCache) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// Unreadable entries are treated as a miss and dropped.
		c.rdb.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

func (c *redisProfileCache) stamp(ctx context.Context, genKey string) (service.Stamp, error) {
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s: %w", genKey, err)
	}
	return service.Stamp(gen), nil
}

func (c *redisProfileCache) set(ctx context.Context, genKey, key string, v any, stamp service.Stamp) (bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("marshal cache entry: %w", err)
	}
	stored, err := setIfGeneration.Run(ctx, c.rdb,
		[]string{genKey, key},
		int64(stamp), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set %s: %w", key, err)
	}
	return stored == 1, nil
}

func (c *redisProfileCache) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, bool, error) {
	var p profile.Profile
	ok, err := c.get(ctx, profileKey(ownerID), &p)
	if err != nil || !ok {
		return nil, false, err
	}
	return &p, true, nil
}

func (c *redisProfileCache) OwnerStamp(ctx context.Context, ownerID uuid.UUID) (service.Stamp, error) {
	return c.stamp(ctx, profileGenKey(ownerID))
}

func (c *redisProfileCache) SetByOwner(ctx context.Context, p *profile.Profile, stamp service.Stamp) (bool, error) {
	return c.set(ctx, profileGenKey(p.OwnerID), profileKey(p.OwnerID), p, stamp)
}

func (c *redisProfileCache) GetAll(ctx context.Context) ([]*profile.Profile, bool, error) {
	var ps []*profile.Profile
	ok, err := c.get(ctx, profileListKey, &ps)
	if err != nil || !ok {
		return nil, false, err
	}
	return ps, true, nil
}

func (c *redisProfileCache) ListStamp(ctx context.Context) (service.Stamp, error) {
	return c.stamp(ctx, profileListGenKey)
}

func (c *redisProfileCache) SetAll(ctx context.Context, profiles []*profile.Profile, stamp service.Stamp) (bool, error) {
	return c.set(ctx, profileListGenKey, profileListKey, profiles, stamp)
}

func (c *redisProfileCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	genKey := profileGenKey(ownerID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Incr(ctx, profileListGenKey)
		if c.ttl > 0 {
			pipe.Expire(ctx, genKey, c.ttl*generationTTLFactor)
		}
		pipe.Del(ctx, profileKey(ownerID), profileListKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s: %w", ownerID, err)
	}
	return nil
}
