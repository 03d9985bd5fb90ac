package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
)

// authCachePrefix namespaces resolved tokens, keyed by digest.
const authCachePrefix = keyPrefix + "auth:"

// revokedMarker replaces the entry of a revoked digest for one TTL, so a
// lookup that read the database before the revocation cannot cache it again.
const revokedMarker = "revoked"

// setUnlessRevokedScript writes ARGV[1] unless the key holds the revoked marker.
var setUnlessRevokedScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[2] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1
`)

// CachedAuthContext represents auth context stored in Redis.
type CachedAuthContext struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsStaff bool   `json:"is_staff"`
}

// GetAuthContext retrieves a cached auth context by token digest.
// Returns nil if not found (cache miss).
func (c *Cache) GetAuthContext(ctx context.Context, digest string) (*model.AuthContext, error) {
	data, err := c.client.Get(ctx, authCachePrefix+digest).Bytes()
	if err != nil || string(data) == revokedMarker {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached CachedAuthContext
	if err := json.Unmarshal(data, &cached); err != nil || cached.UserID == "" {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		UserID:   cached.UserID,
		Email:    cached.Email,
		IsStaff:  cached.IsStaff,
		TokenRef: digest,
	}, nil
}

// SetAuthContext caches an auth context under its token digest.
// The write is skipped when the digest was revoked within the last TTL.
func (c *Cache) SetAuthContext(ctx context.Context, digest string, auth *model.AuthContext) error {
	data, err := json.Marshal(CachedAuthContext{
		UserID:  auth.UserID,
		Email:   auth.Email,
		IsStaff: auth.IsStaff,
	})
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	err = setUnlessRevokedScript.Run(ctx, c.client,
		[]string{authCachePrefix + digest},
		data, revokedMarker, c.authTTL.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("set auth context: %w", err)
	}
	return nil
}

// DeleteAuthContext revokes cached auth contexts.
// Used when a token is replaced or revoked.
func (c *Cache) DeleteAuthContext(ctx context.Context, digests ...string) error {
	if len(digests) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, d := range digests {
		pipe.Set(ctx, authCachePrefix+d, revokedMarker, c.authTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke auth contexts: %w", err)
	}
	return nil
}
