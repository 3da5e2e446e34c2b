package entity

import "time"

type GameAssignment struct {
	ID             uint64
	SubscriptionID uint64
	GameID         uint64
	SeatNumber     int32
	Used           bool
	UsedAt         *time.Time
	CreatedAt      time.Time
}
