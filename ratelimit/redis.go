package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis counts requests per key in fixed windows. A window lasts as long as
// the token bucket with the same rate takes to refill its burst.
type Redis struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRedis(redisURL string, perSecond float64, burst int) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisWithClient(client, perSecond, burst), nil
}

func NewRedisWithClient(client *redis.Client, perSecond float64, burst int) *Redis {
	window := time.Duration(float64(burst) / perSecond * float64(time.Second))
	if window < time.Second {
		window = time.Second
	}
	return &Redis{
		client: client,
		prefix: "ratelimit:",
		limit:  int64(burst),
		window: window,
	}
}

// windowScript counts one request and gives the key a TTL whenever it has
// none, so a key can never outlive its window.
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	n, err := windowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("count request: %w", err)
	}
	return n <= l.limit, nil
}

func (l *Redis) Close() error {
	return l.client.Close()
}
