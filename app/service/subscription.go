package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
	"github.com/vibast-solutions/ms-go-season-tickets/app/pricing"
	"github.com/vibast-solutions/ms-go-season-tickets/app/repository"
	"github.com/vibast-solutions/ms-go-season-tickets/config"
)

const createTxAttempts = 3

type createSubscriptionRequest interface {
	GetUserId() uint64
	GetPackageId() uint64
	GetStartDate() string
	GetEndDate() string
	GetAutoRenew() bool
}

type RenewResult struct {
	SubscriptionID  uint64
	PreviousEndDate time.Time
	NewEndDate      time.Time
}

type Quote struct {
	SubscriptionID   uint64
	CurrentEndDate   time.Time
	CandidateEndDate time.Time
	DaysRemaining    int64
	Price            *big.Rat
	PriceCents       int64
}

type txManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type subscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	FindByID(ctx context.Context, id uint64) (*entity.Subscription, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*entity.Subscription, error)
	FindActiveByUserAndPackage(ctx context.Context, userID, packageID uint64) (*entity.Subscription, error)
	UpdateEndDate(ctx context.Context, id uint64, endDate, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id uint64, status string, updatedAt time.Time) error
	UpdateAutoRenew(ctx context.Context, id uint64, autoRenew bool, updatedAt time.Time) error
}

type packageRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Package, error)
	ListByTeam(ctx context.Context, teamID uint64) ([]*entity.Package, error)
}

type SubscriptionService struct {
	tx               txManager
	subscriptionRepo subscriptionRepository
	packageRepo      packageRepository
	clock            Clock
	cfg              config.SubscriptionConfig
}

func NewSubscriptionService(
	tx txManager,
	subscriptionRepo subscriptionRepository,
	packageRepo packageRepository,
	clock Clock,
	cfg config.SubscriptionConfig,
) *SubscriptionService {
	if cfg.FullYearDays == 0 {
		cfg.FullYearDays = pricing.DefaultFullYearDays
	}
	return &SubscriptionService{
		tx:               tx,
		subscriptionRepo: subscriptionRepo,
		packageRepo:      packageRepo,
		clock:            clock,
		cfg:              cfg,
	}
}

func (s *SubscriptionService) CreateSubscription(ctx context.Context, req createSubscriptionRequest) (*entity.Subscription, error) {
	if req.GetUserId() == 0 || req.GetPackageId() == 0 {
		return nil, fmt.Errorf("%w: user_id and package_id are required", ErrInvalidRequest)
	}
	startDate, err := parseDate("start_date", req.GetStartDate())
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate("end_date", req.GetEndDate())
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if startDate.Before(dateIn(now, s.cfg.Location)) {
		return nil, fmt.Errorf("%w: start_date cannot be in the past", ErrInvalidDateRange)
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("%w: start_date must not be after end_date", ErrInvalidDateRange)
	}

	pkg, err := s.packageRepo.FindByID(ctx, req.GetPackageId())
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	subscription := &entity.Subscription{
		UserID:    req.GetUserId(),
		PackageID: req.GetPackageId(),
		Status:    entity.SubscriptionStatusActive,
		StartDate: startDate,
		EndDate:   endDate,
		AutoRenew: req.GetAutoRenew(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Concurrent creates for the same pair can deadlock on the gap lock taken by
	// the existence check; the retry then sees the winner's row.
	for attempt := 1; ; attempt++ {
		err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
			existing, err := s.subscriptionRepo.FindActiveByUserAndPackage(ctx, subscription.UserID, subscription.PackageID)
			if err != nil {
				return err
			}
			if existing != nil {
				return ErrSubscriptionAlreadyExists
			}
			return s.subscriptionRepo.Create(ctx, subscription)
		})
		if errors.Is(err, repository.ErrTxConflict) && attempt < createTxAttempts {
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionAlreadyExists) {
			return nil, ErrSubscriptionAlreadyExists
		}
		return nil, err
	}

	return subscription, nil
}

func (s *SubscriptionService) GetSubscription(ctx context.Context, id uint64) (*entity.Subscription, error) {
	subscription, err := s.subscriptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, ErrSubscriptionNotFound
	}
	return subscription, nil
}

// RenewOneYear is the manual renewal path. It ignores auto_renew.
func (s *SubscriptionService) RenewOneYear(ctx context.Context, id uint64) (*RenewResult, error) {
	var result *RenewResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		subscription, err := s.subscriptionRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if subscription == nil {
			return ErrSubscriptionNotFound
		}
		if !subscription.IsActive() {
			return ErrSubscriptionCancelled
		}

		newEnd := AddCalendarYear(subscription.EndDate)
		if err := s.subscriptionRepo.UpdateEndDate(ctx, id, newEnd, s.clock.Now().UTC()); err != nil {
			return err
		}
		result = &RenewResult{
			SubscriptionID:  id,
			PreviousEndDate: subscription.EndDate,
			NewEndDate:      newEnd,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelSubscription is idempotent: cancelling a cancelled subscription
// returns it unchanged.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, id uint64) (*entity.Subscription, error) {
	var subscription *entity.Subscription
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		subscription, err = s.subscriptionRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if subscription == nil {
			return ErrSubscriptionNotFound
		}
		if subscription.Status == entity.SubscriptionStatusCancelled {
			return nil
		}

		now := s.clock.Now().UTC()
		if err := s.subscriptionRepo.UpdateStatus(ctx, id, entity.SubscriptionStatusCancelled, now); err != nil {
			return err
		}
		subscription.Status = entity.SubscriptionStatusCancelled
		subscription.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

func (s *SubscriptionService) UpdateSettings(ctx context.Context, id uint64, autoRenew bool) (*entity.Subscription, error) {
	var subscription *entity.Subscription
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		subscription, err = s.subscriptionRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if subscription == nil {
			return ErrSubscriptionNotFound
		}

		now := s.clock.Now().UTC()
		if err := s.subscriptionRepo.UpdateAutoRenew(ctx, id, autoRenew, now); err != nil {
			return err
		}
		subscription.AutoRenew = autoRenew
		subscription.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

// QuoteRenewalPrice prices moving the end date to candidateEndDate. It never
// writes.
func (s *SubscriptionService) QuoteRenewalPrice(ctx context.Context, id uint64, candidateEndDate time.Time) (*Quote, error) {
	subscription, err := s.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	pkg, err := s.packageRepo.FindByID(ctx, subscription.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	days := pricing.DaysBetween(subscription.EndDate, candidateEndDate)
	price, err := pricing.ProRatedPrice(pkg.PriceCents, days, s.cfg.FullYearDays)
	if err != nil {
		return nil, err
	}

	return &Quote{
		SubscriptionID:   id,
		CurrentEndDate:   subscription.EndDate,
		CandidateEndDate: candidateEndDate,
		DaysRemaining:    days,
		Price:            price,
		PriceCents:       pricing.FloorCents(price),
	}, nil
}

func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidRequest, field)
	}
	return t, nil
}
