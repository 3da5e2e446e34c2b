package service

import "errors"

var (
	ErrInvalidRequest            = errors.New("invalid request")
	ErrInvalidDateRange          = errors.New("invalid date range")
	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")
	ErrSubscriptionCancelled     = errors.New("subscription is cancelled")
	ErrPackageNotFound           = errors.New("package not found")
	ErrTeamNotFound              = errors.New("team not found")
	ErrAssignmentNotFound        = errors.New("game assignment not found")
	ErrAssignmentAlreadyExists   = errors.New("game assignment already exists")
	ErrAlreadyRedeemed           = errors.New("ticket already redeemed")
)
