package geocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// redisClient is the part of *redis.Client the cache needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisRepository keeps entries as JSON under "geo:<ip>". Keys carry a
// server-side expiry of ttl so stale entries eventually disappear, but
// readers still check CachedAt.
type RedisRepository struct {
	rdb redisClient
	ttl time.Duration
}

func NewRedisRepository(rdb redisClient, ttl time.Duration) *RedisRepository {
	return &RedisRepository{rdb: rdb, ttl: ttl}
}

type redisEntry struct {
	City     string    `json:"city,omitempty"`
	Region   string    `json:"region,omitempty"`
	Country  string    `json:"country,omitempty"`
	Location string    `json:"location"`
	CachedAt time.Time `json:"cached_at"`
}

func redisKey(ip string) string {
	return "geo:" + ip
}

func (r *RedisRepository) Get(ctx context.Context, ip string) (*models.GeoCacheEntry, error) {
	raw, err := r.rdb.Get(ctx, redisKey(ip)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var v redisEntry
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}

	return &models.GeoCacheEntry{
		IP:       ip,
		City:     v.City,
		Region:   v.Region,
		Country:  v.Country,
		Location: v.Location,
		CachedAt: v.CachedAt,
	}, nil
}

func (r *RedisRepository) Upsert(ctx context.Context, e *models.GeoCacheEntry) error {
	b, err := json.Marshal(redisEntry{
		City:     e.City,
		Region:   e.Region,
		Country:  e.Country,
		Location: e.Location,
		CachedAt: e.CachedAt.UTC(),
	})
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, redisKey(e.IP), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
