// Package seat picks seat numbers for game assignments.
//
// RandomAllocator reproduces the placeholder policy: a uniform draw from
// 1..max with no knowledge of other assignments, so two subscriptions can be
// handed the same seat for the same game. RedisAllocator keeps a reservation
// set per game and never hands out a taken seat.
package seat

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

const DefaultMaxSeat int32 = 20000

var (
	ErrInvalidSeat     = errors.New("invalid seat number")
	ErrSeatUnavailable = errors.New("seat unavailable")
)

type Allocator interface {
	// Allocate returns requested when set, or picks a seat for gameID.
	Allocate(ctx context.Context, gameID uint64, requested *int32) (int32, error)
	// Release gives a seat back after the assignment could not be stored.
	Release(ctx context.Context, gameID uint64, seat int32) error
}

type RandomAllocator struct {
	max  int32
	intN func(n int32) int32
}

func NewRandomAllocator(max int32) *RandomAllocator {
	if max <= 0 {
		max = DefaultMaxSeat
	}
	return &RandomAllocator{max: max, intN: rand.Int32N}
}

func (a *RandomAllocator) Allocate(_ context.Context, _ uint64, requested *int32) (int32, error) {
	if requested != nil {
		if err := validateSeat(*requested); err != nil {
			return 0, err
		}
		return *requested, nil
	}
	return a.intN(a.max) + 1, nil
}

func (a *RandomAllocator) Release(context.Context, uint64, int32) error {
	return nil
}

func validateSeat(seat int32) error {
	if seat <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSeat, seat)
	}
	return nil
}
