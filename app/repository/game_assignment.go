package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
)

var ErrAssignmentAlreadyExists = errors.New("game assignment already exists")

type GameAssignmentRepository struct {
	db DBTX
}

func NewGameAssignmentRepository(db DBTX) *GameAssignmentRepository {
	return &GameAssignmentRepository{db: db}
}

func (r *GameAssignmentRepository) Create(ctx context.Context, assignment *entity.GameAssignment) error {
	query := `
		INSERT INTO game_assignments (subscription_id, game_id, seat_number, used, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		assignment.SubscriptionID,
		assignment.GameID,
		assignment.SeatNumber,
		assignment.Used,
		nullableTimeValue(assignment.UsedAt),
		assignment.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrAssignmentAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	assignment.ID = uint64(id)
	return nil
}

func (r *GameAssignmentRepository) FindBySubscriptionAndGame(ctx context.Context, subscriptionID, gameID uint64) (*entity.GameAssignment, error) {
	query := `
		SELECT id, subscription_id, game_id, seat_number, used, used_at, created_at
		FROM game_assignments
		WHERE subscription_id = ?
		  AND game_id = ?
		LIMIT 1
	`

	item := &entity.GameAssignment{}
	if err := scanGameAssignment(executor(ctx, r.db).QueryRowContext(ctx, query, subscriptionID, gameID), item); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item, nil
}

// MarkUsed flips used exactly once. It reports false when the row was already
// used (or is gone), leaving it untouched.
func (r *GameAssignmentRepository) MarkUsed(ctx context.Context, id uint64, usedAt time.Time) (bool, error) {
	query := `
		UPDATE game_assignments
		SET used = 1, used_at = ?
		WHERE id = ?
		  AND used = 0
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query, usedAt.UTC(), id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func scanGameAssignment(scanner rowScanner, item *entity.GameAssignment) error {
	var usedAt sql.NullTime
	if err := scanner.Scan(
		&item.ID,
		&item.SubscriptionID,
		&item.GameID,
		&item.SeatNumber,
		&item.Used,
		&usedAt,
		&item.CreatedAt,
	); err != nil {
		return err
	}

	if usedAt.Valid {
		item.UsedAt = &usedAt.Time
	} else {
		item.UsedAt = nil
	}
	return nil
}
