package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ipWindow      = 15 * time.Minute
	ipMaxRequests = 10
	emailCooldown = 2 * time.Minute
)

// Limiter implements Redis-backed IP rate limiting and per-email cooldowns.
// All checks fail open: Redis being down must not lock users out.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:ip:%s:%s", purpose, ip)
}

func cooldownKey(email string) string {
	return fmt.Sprintf("ratelimit:email_cooldown:%s", email)
}

// CheckIPRateLimit reports whether the IP exceeded the request window.
func (l *Limiter) CheckIPRateLimit(ctx context.Context, ip string) (bool, error) {
	return l.CheckIPRateLimitWithPurpose(ctx, ip, "default")
}

// CheckIPRateLimitWithPurpose reports whether the IP exceeded the request
// window for a specific endpoint purpose.
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check ip rate limit: %w", err)
	}

	return count >= ipMaxRequests, nil
}

// RecordIPRequest increments the IP's counter for the default purpose.
func (l *Limiter) RecordIPRequest(ctx context.Context, ip string) error {
	return l.RecordIPRequestWithPurpose(ctx, ip, "default")
}

// RecordIPRequestWithPurpose increments the IP's counter. The window TTL is
// set on first increment only, so the window is fixed from the first request.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record ip request: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, ipWindow).Err(); err != nil {
			return fmt.Errorf("failed to set ip rate limit ttl: %w", err)
		}
	}

	return nil
}

// CheckEmailCooldown reports whether the email requested too recently.
func (l *Limiter) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	exists, err := l.client.Exists(ctx, cooldownKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check email cooldown: %w", err)
	}

	return exists > 0, nil
}

// SetEmailCooldown starts the cooldown for an email.
func (l *Limiter) SetEmailCooldown(ctx context.Context, email string) error {
	if err := l.client.Set(ctx, cooldownKey(email), "1", emailCooldown).Err(); err != nil {
		return fmt.Errorf("failed to set email cooldown: %w", err)
	}

	return nil
}
