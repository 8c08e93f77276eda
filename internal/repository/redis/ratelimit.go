package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const authRLPrefix = "skyreserva:v1:rl:auth"

// KeyAuthAttempts scopes the attempt window to one client, usually by IP.
func KeyAuthAttempts(clientID string) string {
	return authRLPrefix + ":" + clientID
}

// Sliding window over a sorted set of attempt timestamps.
// KEYS[1] = key
// ARGV[1] = now_ms
// ARGV[2] = window_ms
// ARGV[3] = limit
// ARGV[4] = member (unique per attempt)
const luaAuthWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
redis.call('ZADD', key, 'NX', now, member)
local count = redis.call('ZCARD', key)
redis.call('PEXPIRE', key, window)

if count > limit then
  local earliest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local earliestScore = tonumber(earliest[2]) or (now - window)
  local retry_ms = window - (now - earliestScore)
  if retry_ms < 0 then retry_ms = 0 end
  return {0, retry_ms}
end
return {1, 0}
`

// AuthAttemptLimiter caps card authorization attempts per client inside a
// sliding window, so a stolen-card number cannot be brute-forced against the
// registry. Every attempt counts, approved or denied.
type AuthAttemptLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	script *redis.Script
}

func NewAuthAttemptLimiter(rdb *redis.Client, limit int, window time.Duration) *AuthAttemptLimiter {
	return &AuthAttemptLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		script: redis.NewScript(luaAuthWindow),
	}
}

// Allow records one attempt for clientID and reports whether it is within the
// limit. When over the limit, retryAfter is the wait until the oldest attempt
// leaves the window.
func (l *AuthAttemptLimiter) Allow(ctx context.Context, clientID string) (allowed bool, retryAfter time.Duration, err error) {
	nowMs := time.Now().UnixNano() / 1e6

	res, err := l.script.Run(
		ctx,
		l.rdb,
		[]string{KeyAuthAttempts(clientID)},
		nowMs, l.window.Milliseconds(), l.limit, randomHex(12),
	).Result()
	if err != nil {
		return false, 0, err
	}

	arr, ok := res.([]any)
	if !ok || len(arr) != 2 {
		return false, 0, fmt.Errorf("bad script result: %v", res)
	}

	allowed = toInt(arr[0]) == 1
	retryAfter = time.Duration(toInt(arr[1])) * time.Millisecond

	return allowed, retryAfter, nil
}

func toInt(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		var x int64
		fmt.Sscan(t, &x)
		return x
	default:
		return 0
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
