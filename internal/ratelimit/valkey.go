package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// INCR and PEXPIRE run in one script so a key never outlives its window
var fixedWindowScript = rueidis.NewLuaScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// ValkeyLimiter keeps counters in Valkey so every API instance shares them
type ValkeyLimiter struct {
	client rueidis.Client
	prefix string
	limit  int
	period time.Duration
	now    func() time.Time
}

func NewValkeyLimiter(client rueidis.Client, prefix string, limit int, period time.Duration) *ValkeyLimiter {
	return &ValkeyLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		period: period,
		now:    time.Now,
	}
}

// Allow counts every request, including rejected ones, within the window
func (l *ValkeyLimiter) Allow(ctx context.Context, key string) (Result, error) {
	values, err := fixedWindowScript.Exec(ctx, l.client,
		[]string{l.prefix + key},
		[]string{fmt.Sprintf("%d", l.period.Milliseconds())},
	).ToArray()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(values) != 2 {
		return Result{}, fmt.Errorf("unexpected rate limit reply length %d", len(values))
	}

	count, err := values[0].AsInt64()
	if err != nil {
		return Result{}, err
	}
	ttl, err := values[1].AsInt64()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Allowed: count <= int64(l.limit),
		Count:   int(count),
		Limit:   l.limit,
		ResetAt: l.now().Add(time.Duration(ttl) * time.Millisecond),
	}, nil
}
