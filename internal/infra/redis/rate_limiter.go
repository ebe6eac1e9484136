package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter, used to keep a single user from
// hammering expensive commands (AI analysis, store browsing).
type RateLimiter struct {
	client *redClient
}

func NewRateLimiter(client *redClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

func UserCommandKey(userID int64, command string) string {
	return fmt.Sprintf("rate_limit:%d:%s", userID, command)
}
