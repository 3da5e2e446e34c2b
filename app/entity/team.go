package entity

import "time"

type Team struct {
	ID         uint64
	Name       string
	League     string
	City       string
	Season     int32
	TotalGames int32
	CreatedAt  time.Time
}
