package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript runs the token bucket atomically in Redis. KEYS[1] is the
// bucket key; ARGV are capacity, refill rate, refill interval (ms), tokens
// to consume, and the current time (ms). It returns the remaining count and
// the last refill timestamp (ms).
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil then
  tokens = capacity
  last_refill = now
end

local intervals = math.floor((now - last_refill) / interval)
local max_intervals = math.floor(capacity / rate) + 1
if intervals > max_intervals then
  intervals = max_intervals
end
if intervals > 0 then
  tokens = math.min(tokens + intervals * rate, capacity)
  last_refill = now
end

-- A denied attempt leaves the stored count unchanged.
local remaining
if tokens < requested then
  remaining = tokens - requested
else
  tokens = tokens - requested
  remaining = tokens
end

redis.call('HMSET', KEYS[1], 'tokens', tokens, 'last_refill', last_refill)
redis.call('PEXPIRE', KEYS[1], interval * (max_intervals + 1))

return {remaining, last_refill}
`)

// RedisStore keeps bucket state in Redis so every instance behind a load
// balancer enforces the same limits.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	now := time.Now()

	res, err := consumeScript.Run(ctx, rs.client, []string{rs.prefix + ":" + key},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		tokens,
		now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ErrStoreUnavailable
	}

	resetAt := time.UnixMilli(res[1]).Add(cfg.RefillInterval)
	return int(res[0]), resetAt, nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.prefix+":"+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
