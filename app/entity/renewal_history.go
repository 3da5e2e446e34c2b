package entity

import "time"

const (
	RenewalStatusCompleted = "completed"
	RenewalStatusFailed    = "failed"
)

type RenewalHistory struct {
	ID             uint64
	SubscriptionID uint64
	RenewalDate    time.Time
	AmountCents    int64
	Status         string
}
