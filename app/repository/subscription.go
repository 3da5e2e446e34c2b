package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
)

var ErrSubscriptionAlreadyExists = errors.New("subscription already exists")

const subscriptionColumns = `
		id, user_id, package_id, status, start_date, end_date, auto_renew,
		created_at, updated_at
`

type SubscriptionRepository struct {
	db DBTX
}

func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, subscription *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			user_id, package_id, status, start_date, end_date, auto_renew,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		subscription.UserID,
		subscription.PackageID,
		subscription.Status,
		dateValue(subscription.StartDate),
		dateValue(subscription.EndDate),
		subscription.AutoRenew,
		subscription.CreatedAt,
		subscription.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrSubscriptionAlreadyExists
		}
		if isTxConflictError(err) {
			return fmt.Errorf("%w: %v", ErrTxConflict, err)
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	subscription.ID = uint64(id)
	return nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id uint64) (*entity.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `FROM subscriptions WHERE id = ?`
	return r.findOne(ctx, query, id)
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *SubscriptionRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*entity.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `FROM subscriptions WHERE id = ? FOR UPDATE`
	return r.findOne(ctx, query, id)
}

// FindActiveByUserAndPackage locks the matching index range, so a concurrent
// insert for the same pair waits for the surrounding transaction.
func (r *SubscriptionRepository) FindActiveByUserAndPackage(ctx context.Context, userID, packageID uint64) (*entity.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = ?
		  AND package_id = ?
		  AND status = ?
		LIMIT 1
		FOR UPDATE
	`
	return r.findOne(ctx, query, userID, packageID, entity.SubscriptionStatusActive)
}

func (r *SubscriptionRepository) UpdateEndDate(ctx context.Context, id uint64, endDate, updatedAt time.Time) error {
	query := `UPDATE subscriptions SET end_date = ?, updated_at = ? WHERE id = ?`
	return r.exec(ctx, query, dateValue(endDate), updatedAt, id)
}

func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id uint64, status string, updatedAt time.Time) error {
	query := `UPDATE subscriptions SET status = ?, updated_at = ? WHERE id = ?`
	return r.exec(ctx, query, status, updatedAt, id)
}

func (r *SubscriptionRepository) UpdateAutoRenew(ctx context.Context, id uint64, autoRenew bool, updatedAt time.Time) error {
	query := `UPDATE subscriptions SET auto_renew = ?, updated_at = ? WHERE id = ?`
	return r.exec(ctx, query, autoRenew, updatedAt, id)
}

func (r *SubscriptionRepository) ListDueAutoRenew(ctx context.Context, asOf time.Time) ([]*entity.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE auto_renew = 1
		  AND status = ?
		  AND end_date <= ?
		ORDER BY id ASC
	`
	return r.listByQuery(ctx, query, entity.SubscriptionStatusActive, dateValue(asOf))
}

func (r *SubscriptionRepository) ListActiveByTeam(ctx context.Context, teamID uint64) ([]*entity.Subscription, error) {
	query := `
		SELECT s.id, s.user_id, s.package_id, s.status, s.start_date, s.end_date,
		       s.auto_renew, s.created_at, s.updated_at
		FROM subscriptions s
		JOIN packages p ON p.id = s.package_id
		WHERE s.status = ?
		  AND p.team_id = ?
		ORDER BY s.id ASC
	`
	return r.listByQuery(ctx, query, entity.SubscriptionStatusActive, teamID)
}

func (r *SubscriptionRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Subscription, error) {
	item := &entity.Subscription{}
	if err := scanSubscription(executor(ctx, r.db).QueryRowContext(ctx, query, args...), item); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *SubscriptionRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := executor(ctx, r.db).ExecContext(ctx, query, args...)
	return err
}

func (r *SubscriptionRepository) listByQuery(ctx context.Context, query string, args ...interface{}) ([]*entity.Subscription, error) {
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Subscription, 0)
	for rows.Next() {
		item := &entity.Subscription{}
		if err := scanSubscription(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanSubscription(scanner rowScanner, item *entity.Subscription) error {
	return scanner.Scan(
		&item.ID,
		&item.UserID,
		&item.PackageID,
		&item.Status,
		&item.StartDate,
		&item.EndDate,
		&item.AutoRenew,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
}
