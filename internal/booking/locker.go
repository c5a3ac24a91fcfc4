package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSlotLocked is returned when the per-slot lock could not be acquired
// within the wait budget.
var ErrSlotLocked = errors.New("slot is locked by another booking in progress")

// SlotLocker serializes seat-count mutations per slot. The document store has
// no conditional-update primitive, so single-writer-per-slot is what keeps
// read-modify-write seat updates from racing.
type SlotLocker interface {
	AcquireSlot(ctx context.Context, slotID int) (release func(), err error)
}

// IdempotencyGuard claims client-generated idempotency keys. It covers the
// coupon path, which has no payment reference to anchor idempotency on.
type IdempotencyGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisSlotLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

func NewRedisSlotLocker(client redis.UniversalClient) *RedisSlotLocker {
	return &RedisSlotLocker{
		client: client,
		ttl:    10 * time.Second,
		wait:   5 * time.Second,
		retry:  100 * time.Millisecond,
	}
}

// releaseScript deletes the lock only if this caller still owns it, so an
// expired lock taken over by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func slotLockKey(slotID int) string {
	return fmt.Sprintf("lock:slot:%d", slotID)
}

func (l *RedisSlotLocker) AcquireSlot(ctx context.Context, slotID int) (func(), error) {
	key := slotLockKey(slotID)
	owner := uuid.NewString()

	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrSlotLocked
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		releaseScript.Run(ctx, l.client, []string{key}, owner)
	}

	return release, nil
}

type RedisIdempotencyGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisIdempotencyGuard(client redis.UniversalClient) *RedisIdempotencyGuard {
	return &RedisIdempotencyGuard{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func idempotencyKey(key string) string {
	return "idem:booking:" + key
}

func (g *RedisIdempotencyGuard) Claim(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, idempotencyKey(key), 1, g.ttl).Result()
}

func (g *RedisIdempotencyGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, idempotencyKey(key)).Err()
}
