package harnessports

import "context"

// RateLimiter coordinates throughput of model calls, keyed by phase.
type RateLimiter interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
