package entity

import "time"

// Package is a purchasable season-ticket tier. PriceCents is in minor units.
type Package struct {
	ID         uint64
	TeamID     uint64
	Name       string
	NumGames   int32
	PriceCents int64
	Section    string
	CreatedAt  time.Time
}
