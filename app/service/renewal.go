package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
	"github.com/vibast-solutions/ms-go-season-tickets/app/factory"
	"github.com/vibast-solutions/ms-go-season-tickets/app/payment"
	"github.com/vibast-solutions/ms-go-season-tickets/config"
	"golang.org/x/sync/semaphore"
)

type dueSubscriptionRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Subscription, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*entity.Subscription, error)
	ListDueAutoRenew(ctx context.Context, asOf time.Time) ([]*entity.Subscription, error)
}

type renewalHistoryRepository interface {
	Create(ctx context.Context, item *entity.RenewalHistory) error
	ListBySubscription(ctx context.Context, subscriptionID uint64) ([]*entity.RenewalHistory, error)
}

type subscriptionRenewer interface {
	RenewOneYear(ctx context.Context, id uint64) (*RenewResult, error)
}

// RunResult aggregates one batch. Unreconciled lists subscriptions that were
// charged but whose renewal could not be stored.
type RunResult struct {
	Processed    int
	Failed       int
	Skipped      bool
	Unreconciled []uint64
}

type renewalOutcome int

const (
	outcomeStale renewalOutcome = iota
	outcomeRenewed
	outcomeChargeFailed
	outcomeUnreconciled
)

var (
	errNoLongerDue  = errors.New("subscription no longer due")
	errChargeFailed = errors.New("renewal charge failed")
)

// RenewalEngine charges and extends due auto-renew subscriptions. At most one
// batch runs at a time per engine; overlapping triggers are dropped. Engines in
// other processes are serialized per subscription by the row lock taken before
// the charge.
type RenewalEngine struct {
	tx               txManager
	subscriptionRepo dueSubscriptionRepository
	historyRepo      renewalHistoryRepository
	renewer          subscriptionRenewer
	gateway          payment.Gateway
	clock            Clock
	cfg              config.SubscriptionConfig
	guard            *semaphore.Weighted
	dropped          atomic.Int64
	logger           logrus.FieldLogger
}

func NewRenewalEngine(
	tx txManager,
	subscriptionRepo dueSubscriptionRepository,
	historyRepo renewalHistoryRepository,
	renewer subscriptionRenewer,
	gateway payment.Gateway,
	clock Clock,
	cfg config.SubscriptionConfig,
) *RenewalEngine {
	return &RenewalEngine{
		tx:               tx,
		subscriptionRepo: subscriptionRepo,
		historyRepo:      historyRepo,
		renewer:          renewer,
		gateway:          gateway,
		clock:            clock,
		cfg:              cfg,
		guard:            semaphore.NewWeighted(1),
		logger:           factory.NewModuleLogger("renewal-engine"),
	}
}

// RunOnce processes every due subscription. It returns an error only when the
// scan fails; per-subscription failures are counted in the result.
func (e *RenewalEngine) RunOnce(ctx context.Context) (*RunResult, error) {
	if !e.guard.TryAcquire(1) {
		dropped := e.dropped.Add(1)
		e.logger.WithField("dropped_total", dropped).Warn("renewal_run_dropped")
		return &RunResult{Skipped: true}, nil
	}
	defer e.guard.Release(1)

	asOf := dateIn(e.clock.Now(), e.cfg.Location)
	items, err := e.subscriptionRepo.ListDueAutoRenew(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("scan due renewals: %w", err)
	}
	e.logger.WithField("due", len(items)).WithField("as_of", asOf.Format(time.DateOnly)).Info("renewal_run_started")

	result := &RunResult{Unreconciled: make([]uint64, 0)}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			e.logger.WithError(err).WithField("remaining", len(items)-i).Warn("renewal_run_interrupted")
			break
		}

		switch e.renewOne(ctx, item, asOf) {
		case outcomeRenewed:
			result.Processed++
		case outcomeChargeFailed:
			result.Failed++
		case outcomeUnreconciled:
			result.Failed++
			result.Unreconciled = append(result.Unreconciled, item.ID)
		}
	}

	e.logger.WithFields(logrus.Fields{
		"processed":    result.Processed,
		"failed":       result.Failed,
		"unreconciled": len(result.Unreconciled),
	}).Info("renewal_run_finished")
	return result, nil
}

// DroppedRuns counts triggers that arrived while a batch was running.
func (e *RenewalEngine) DroppedRuns() int64 {
	return e.dropped.Load()
}

// History returns the renewal attempts of one subscription, newest first.
func (e *RenewalEngine) History(ctx context.Context, subscriptionID uint64) ([]*entity.RenewalHistory, error) {
	subscription, err := e.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, ErrSubscriptionNotFound
	}
	return e.historyRepo.ListBySubscription(ctx, subscriptionID)
}

func (e *RenewalEngine) renewOne(ctx context.Context, item *entity.Subscription, asOf time.Time) renewalOutcome {
	l := e.logger.WithField("subscription_id", item.ID)

	var (
		charged bool
		res     payment.Result
		renewed *RenewResult
	)
	// The lock is held through the charge and the extension. A batch in another
	// process blocks on it and then finds the subscription no longer due.
	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := e.subscriptionRepo.FindByIDForUpdate(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("lock subscription: %w", err)
		}
		if current == nil || !current.IsActive() || !current.AutoRenew || current.EndDate.After(asOf) {
			return errNoLongerDue
		}

		chargeCtx := ctx
		if e.cfg.BillingTimeout > 0 {
			var cancel context.CancelFunc
			chargeCtx, cancel = context.WithTimeout(ctx, e.cfg.BillingTimeout)
			defer cancel()
		}

		res, err = e.chargeSafely(chargeCtx, current.UserID, current.PackageID)
		if err != nil || !res.Success {
			entry := l.WithField("package_id", current.PackageID)
			if err != nil {
				entry = entry.WithError(err)
			} else {
				entry = entry.WithField("decline_reason", res.Error)
			}
			entry.Warn("Renewal charge failed")
			return errChargeFailed
		}
		charged = true

		renewed, err = e.renewer.RenewOneYear(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("extend subscription: %w", err)
		}
		return e.historyRepo.Create(ctx, &entity.RenewalHistory{
			SubscriptionID: current.ID,
			RenewalDate:    e.clock.Now().UTC(),
			AmountCents:    res.AmountCents,
			Status:         entity.RenewalStatusCompleted,
		})
	})

	switch {
	case err == nil:
		l.WithField("new_end_date", renewed.NewEndDate.Format(time.DateOnly)).
			WithField("amount_cents", res.AmountCents).
			Info("Subscription renewed")
		return outcomeRenewed
	case errors.Is(err, errNoLongerDue):
		l.Debug("Subscription no longer due, skipping")
		return outcomeStale
	case !charged:
		if !errors.Is(err, errChargeFailed) {
			l.WithError(err).Error("Failed to lock subscription before charge")
		}
		e.recordFailure(ctx, l, item.ID, 0)
		return outcomeChargeFailed
	}

	// Do not charge again: the customer has paid once already.
	l.WithError(err).WithFields(logrus.Fields{
		"reconciliation_required": true,
		"amount_cents":            res.AmountCents,
		"transaction_id":          res.TransactionID,
	}).Error("Charged renewal could not be recorded")
	e.recordFailure(ctx, l, item.ID, res.AmountCents)
	return outcomeUnreconciled
}

func (e *RenewalEngine) recordFailure(ctx context.Context, l logrus.FieldLogger, subscriptionID uint64, amountCents int64) {
	err := e.historyRepo.Create(ctx, &entity.RenewalHistory{
		SubscriptionID: subscriptionID,
		RenewalDate:    e.clock.Now().UTC(),
		AmountCents:    amountCents,
		Status:         entity.RenewalStatusFailed,
	})
	if err != nil {
		l.WithError(err).Error("Failed to record failed renewal")
	}
}

func (e *RenewalEngine) chargeSafely(ctx context.Context, userID, packageID uint64) (_ payment.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("payment processing failed: %v", rec)
		}
	}()

	return e.gateway.Charge(ctx, userID, packageID)
}
