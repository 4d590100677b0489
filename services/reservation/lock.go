package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockHeld is returned when a lock (or a semaphore holder slot) could not
// be acquired because the limit is already reached.
var ErrLockHeld = errors.New("lock already held")

// SlotLock is a TTL-bound claim granting the right to attempt a commit.
// Exclusive locks carry a token-checked key; semaphore locks carry the
// granularity-bucket keys whose counters were incremented.
type SlotLock struct {
	Key     string
	Token   string
	Buckets []string
}

// LockService hands out short-lived distributed locks keyed by slot
// fingerprints. It is a throughput mechanism, never the correctness
// mechanism: entries expire with their TTL, and the booking transaction's
// uniqueness constraint is the final backstop if this layer fails open.
type LockService interface {
	// Acquire takes an exclusive lock. Fails fast with ErrLockHeld.
	Acquire(ctx context.Context, key string, ttl time.Duration) (*SlotLock, error)
	// AcquireSlot takes one holder slot of a counting semaphore covering
	// [start, end), allowing up to limit concurrent holders per instant.
	AcquireSlot(ctx context.Context, key string, start, end time.Time, limit int, ttl time.Duration) (*SlotLock, error)
	// Release frees the lock on every exit path. Safe to call after expiry.
	Release(ctx context.Context, lock *SlotLock) error
}

// RedisLockService implements LockService on Redis. Exclusive locks are
// SET NX entries released by a token-compare script; counting semaphores are
// per-granularity-bucket counters driven atomically by Lua.
type RedisLockService struct {
	Client *redis.Client
	// Bucket is the granularity used to key semaphore counters.
	Bucket time.Duration
}

// NewRedisLockService constructs a lock service over the given client.
func NewRedisLockService(client *redis.Client, bucket time.Duration) *RedisLockService {
	if bucket <= 0 {
		bucket = 15 * time.Minute
	}
	return &RedisLockService{Client: client, Bucket: bucket}
}

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// acquireSlotScript checks every bucket counter against the limit, then
// increments them all, atomically. Returns 1 on success, 0 when any bucket
// is already at the limit.
var acquireSlotScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])
for i = 1, #KEYS do
	local held = tonumber(redis.call('GET', KEYS[i]) or '0')
	if held >= limit then
		return 0
	end
end
for i = 1, #KEYS do
	redis.call('INCR', KEYS[i])
	redis.call('PEXPIRE', KEYS[i], ttl)
end
return 1
`)

// releaseSlotScript decrements every bucket counter, deleting exhausted ones.
var releaseSlotScript = redis.NewScript(`
for i = 1, #KEYS do
	local held = tonumber(redis.call('DECR', KEYS[i]))
	if held <= 0 then
		redis.call('DEL', KEYS[i])
	end
end
return 1
`)

func (s *RedisLockService) Acquire(ctx context.Context, key string, ttl time.Duration) (*SlotLock, error) {
	token := uuid.New().String()
	ok, err := s.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock acquire failed: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &SlotLock{Key: key, Token: token}, nil
}

func (s *RedisLockService) AcquireSlot(ctx context.Context, key string, start, end time.Time, limit int, ttl time.Duration) (*SlotLock, error) {
	buckets := s.bucketKeys(key, start, end)
	res, err := acquireSlotScript.Run(ctx, s.Client, buckets, limit, ttl.Milliseconds()).Int()
	if err != nil {
		return nil, fmt.Errorf("semaphore acquire failed: %w", err)
	}
	if res != 1 {
		return nil, ErrLockHeld
	}
	return &SlotLock{Key: key, Buckets: buckets}, nil
}

func (s *RedisLockService) Release(ctx context.Context, lock *SlotLock) error {
	if lock == nil {
		return nil
	}
	if len(lock.Buckets) > 0 {
		if err := releaseSlotScript.Run(ctx, s.Client, lock.Buckets).Err(); err != nil {
			return fmt.Errorf("semaphore release failed: %w", err)
		}
		return nil
	}
	if err := releaseScript.Run(ctx, s.Client, []string{lock.Key}, lock.Token).Err(); err != nil {
		return fmt.Errorf("lock release failed: %w", err)
	}
	return nil
}

// bucketKeys covers [start, end) with granularity-aligned counter keys.
func (s *RedisLockService) bucketKeys(key string, start, end time.Time) []string {
	var keys []string
	bucket := start.Truncate(s.Bucket)
	for bucket.Before(end) {
		keys = append(keys, fmt.Sprintf("%s:%d", key, bucket.Unix()))
		bucket = bucket.Add(s.Bucket)
	}
	return keys
}
