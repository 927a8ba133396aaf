// Package ratelimit throttles requests per client key, either in process or
// through counters shared in Redis by every instance of the service.
package ratelimit

import "context"

type Limiter interface {
	// Allow reports whether one more request for key fits in the budget.
	Allow(ctx context.Context, key string) (bool, error)
}
