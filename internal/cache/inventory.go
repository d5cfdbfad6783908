package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campushub/internal/observability"
)

const (
	UserKeyPrefix      = "user:%d"
	NewsKeyPrefix      = "berita:%s"
	WorkKeyPrefix      = "karya:%s"
	ProgramKeyPrefix   = "prodi:%s"
	ProfileKey         = "profile"
	TokenBlacklistPref = "jwt:blacklist:%s"
)

const (
	UserTTL    = 5 * time.Minute
	NewsTTL    = 10 * time.Minute
	WorkTTL    = 10 * time.Minute
	ProgramTTL = 30 * time.Minute
	ProfileTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func NewsKey(slug string) string {
	return fmt.Sprintf(NewsKeyPrefix, slug)
}

func WorkKey(slug string) string {
	return fmt.Sprintf(WorkKeyPrefix, slug)
}

func ProgramKey(slug string) string {
	return fmt.Sprintf(ProgramKeyPrefix, slug)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateWork(ctx context.Context, slug string) {
	Invalidate(ctx, WorkKey(slug))
}

func InvalidateNews(ctx context.Context, slug string) {
	Invalidate(ctx, NewsKey(slug))
}

func InvalidateProgram(ctx context.Context, slug string) {
	Invalidate(ctx, ProgramKey(slug))
}

func InvalidateProfile(ctx context.Context) {
	Invalidate(ctx, ProfileKey)
}

// Aside implements the cache-aside pattern: fill dest from the cached JSON
// value if present, otherwise run load and store the result with ttl.
// Degrades to a plain load when Redis is unavailable.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	prefix := keyPrefix(key)

	if client != nil {
		raw, err := client.Get(ctx, key).Result()
		if err == nil {
			if jsonErr := json.Unmarshal([]byte(raw), dest); jsonErr == nil {
				observability.CacheHits.WithLabelValues(prefix).Inc()
				return nil
			}
		}
		// Redis errors are already counted by the client hook.
		observability.CacheMisses.WithLabelValues(prefix).Inc()
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if raw, jsonErr := json.Marshal(dest); jsonErr == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}

func keyPrefix(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}

// BlacklistToken marks a JWT ID as revoked until the token's expiry.
func BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return client.Set(ctx, fmt.Sprintf(TokenBlacklistPref, jti), "1", ttl).Err()
}

// IsTokenBlacklisted reports whether the JWT ID has been revoked. Errors are
// treated as not-blacklisted so a Redis outage does not lock everyone out.
func IsTokenBlacklisted(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, fmt.Sprintf(TokenBlacklistPref, jti)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
