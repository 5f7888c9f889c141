package ratelimit

import "context"

// RateLimiter caps how many hand-offs per second a scope may issue.
type RateLimiter interface {
	Allow(ctx context.Context, scope string) (bool, error)
	Wait(ctx context.Context, scope string) error
}
