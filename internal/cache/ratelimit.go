package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// Bucket key namespaces.
const (
	bucketUser = "rl:user:"
	bucketIP   = "rl:ip:"
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time // when the bucket is full again
	RetryAfter time.Duration
}

// tokenBucketScript refills and takes one token atomically.
// Times are in milliseconds so sub-second rates refill smoothly.
//
// KEYS[1] bucket key
// ARGV: refill per ms, capacity, now ms, idle ttl ms
// Returns {allowed, retry_after_ms, tokens_left, full_in_ms}.
var tokenBucketScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or capacity
local ts = tonumber(state[2]) or now

if now > ts then
	tokens = math.min(capacity, tokens + (now - ts) * rate)
end

local allowed = 0
local retry_after = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	retry_after = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', now)
redis.call('PEXPIRE', KEYS[1], ttl)

local full_in = math.ceil((capacity - tokens) / rate)
return {allowed, retry_after, math.floor(tokens), full_in}
`)

// CheckUserRateLimit takes one request from the user's bucket.
// A non-positive rate means unlimited.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute <= 0 {
		return unlimited(burst), nil
	}
	return c.take(ctx, bucketUser+userID, float64(ratePerMinute)/60, burst)
}

// CheckIPRateLimit takes one request from the client address's bucket.
// Addresses are hashed so raw IPs never reach Redis.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	if ratePerSecond <= 0 {
		return unlimited(burst), nil
	}
	return c.take(ctx, bucketIP+hashIP(ip), float64(ratePerSecond), burst)
}

func (c *Cache) take(ctx context.Context, bucket string, perSecond float64, burst int) (*RateLimitResult, error) {
	if burst < 1 {
		burst = 1
	}
	perMs := perSecond / 1000

	// Idle buckets expire once they would have refilled completely.
	ttl := int64(math.Ceil(float64(burst)/perMs)) + 1000

	now := time.Now()
	res, err := tokenBucketScript.Run(ctx, c.client,
		[]string{keyPrefix + bucket},
		perMs, burst, now.UnixMilli(), ttl,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", bucket, err)
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(res[3]) * time.Millisecond),
	}, nil
}

func unlimited(burst int) *RateLimitResult {
	return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: time.Now()}
}

// hashIP returns the first 8 bytes of SHA-256(ip) as hex.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
