package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
)

type RenewalHistoryRepository struct {
	db DBTX
}

func NewRenewalHistoryRepository(db DBTX) *RenewalHistoryRepository {
	return &RenewalHistoryRepository{db: db}
}

func (r *RenewalHistoryRepository) Create(ctx context.Context, item *entity.RenewalHistory) error {
	query := `
		INSERT INTO renewal_history (subscription_id, renewal_date, amount_cents, status)
		VALUES (?, ?, ?, ?)
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		item.SubscriptionID,
		item.RenewalDate.UTC(),
		item.AmountCents,
		item.Status,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}

func (r *RenewalHistoryRepository) ListBySubscription(ctx context.Context, subscriptionID uint64) ([]*entity.RenewalHistory, error) {
	query := `
		SELECT id, subscription_id, renewal_date, amount_cents, status
		FROM renewal_history
		WHERE subscription_id = ?
		ORDER BY id DESC
	`

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.RenewalHistory, 0)
	for rows.Next() {
		item := &entity.RenewalHistory{}
		if err := rows.Scan(&item.ID, &item.SubscriptionID, &item.RenewalDate, &item.AmountCents, &item.Status); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
