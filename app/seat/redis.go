package seat

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultAttempts = 16

type reservationStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisAllocator struct {
	store    reservationStore
	max      int32
	attempts int
	ttl      time.Duration
	intN     func(n int32) int32
}

// NewRedisAllocator reserves seats as "seat:{game}:{seat}" keys. A zero ttl
// keeps reservations forever.
func NewRedisAllocator(store reservationStore, max int32, attempts int, ttl time.Duration) *RedisAllocator {
	if max <= 0 {
		max = DefaultMaxSeat
	}
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	return &RedisAllocator{store: store, max: max, attempts: attempts, ttl: ttl, intN: rand.Int32N}
}

func (a *RedisAllocator) Allocate(ctx context.Context, gameID uint64, requested *int32) (int32, error) {
	if requested != nil {
		if err := validateSeat(*requested); err != nil {
			return 0, err
		}
		ok, err := a.reserve(ctx, gameID, *requested)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("%w: seat %d for game %d", ErrSeatUnavailable, *requested, gameID)
		}
		return *requested, nil
	}

	for i := 0; i < a.attempts; i++ {
		candidate := a.intN(a.max) + 1
		ok, err := a.reserve(ctx, gameID, candidate)
		if err != nil {
			return 0, err
		}
		if ok {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("%w: no free seat for game %d after %d attempts", ErrSeatUnavailable, gameID, a.attempts)
}

func (a *RedisAllocator) Release(ctx context.Context, gameID uint64, seat int32) error {
	if err := a.store.Del(ctx, reservationKey(gameID, seat)).Err(); err != nil {
		return fmt.Errorf("release seat %d for game %d: %w", seat, gameID, err)
	}
	return nil
}

func (a *RedisAllocator) reserve(ctx context.Context, gameID uint64, seat int32) (bool, error) {
	ok, err := a.store.SetNX(ctx, reservationKey(gameID, seat), time.Now().UTC().Format(time.RFC3339), a.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve seat %d for game %d: %w", seat, gameID, err)
	}
	return ok, nil
}

func reservationKey(gameID uint64, seat int32) string {
	return fmt.Sprintf("seat:%d:%d", gameID, seat)
}
