package provider

import (
	"context"
	"fmt"

	"github.com/kursadbilgin/sms-bridge/internal/ratelimit"
)

const rateLimitScope = "sms"

// RateLimitedTransport waits on a RateLimiter before every hand-off.
type RateLimitedTransport struct {
	next    Transport
	limiter ratelimit.RateLimiter
}

func NewRateLimitedTransport(next Transport, limiter ratelimit.RateLimiter) (*RateLimitedTransport, error) {
	if next == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}

	return &RateLimitedTransport{next: next, limiter: limiter}, nil
}

func (t *RateLimitedTransport) SendText(ctx context.Context, address string, body string) error {
	if err := t.limiter.Wait(ctx, rateLimitScope); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return t.next.SendText(ctx, address, body)
}
