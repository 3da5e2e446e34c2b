package entity

import "time"

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription dates are calendar dates stored at UTC midnight.
type Subscription struct {
	ID        uint64
	UserID    uint64
	PackageID uint64
	Status    string
	StartDate time.Time
	EndDate   time.Time
	AutoRenew bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}
