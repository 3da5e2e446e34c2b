package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
)

type TeamRepository struct {
	db DBTX
}

func NewTeamRepository(db DBTX) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]*entity.Team, error) {
	query := `
		SELECT id, name, league, city, season, total_games, created_at
		FROM teams
		ORDER BY name ASC
	`

	rows, err := executor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Team, 0)
	for rows.Next() {
		item := &entity.Team{}
		if err := rows.Scan(&item.ID, &item.Name, &item.League, &item.City, &item.Season, &item.TotalGames, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id uint64) (*entity.Team, error) {
	query := `
		SELECT id, name, league, city, season, total_games, created_at
		FROM teams
		WHERE id = ?
	`

	item := &entity.Team{}
	err := executor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.League, &item.City, &item.Season, &item.TotalGames, &item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Upsert inserts the team or returns the id of the existing row with the
// same name and season.
func (r *TeamRepository) Upsert(ctx context.Context, team *entity.Team) error {
	query := `
		INSERT INTO teams (name, league, city, season, total_games, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		team.Name, team.League, team.City, team.Season, team.TotalGames, team.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	team.ID = uint64(id)
	return nil
}

type PackageRepository struct {
	db DBTX
}

func NewPackageRepository(db DBTX) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) FindByID(ctx context.Context, id uint64) (*entity.Package, error) {
	query := `
		SELECT id, team_id, name, num_games, price_cents, section, created_at
		FROM packages
		WHERE id = ?
	`

	item := &entity.Package{}
	err := executor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.TeamID, &item.Name, &item.NumGames, &item.PriceCents, &item.Section, &item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PackageRepository) ListByTeam(ctx context.Context, teamID uint64) ([]*entity.Package, error) {
	query := `
		SELECT id, team_id, name, num_games, price_cents, section, created_at
		FROM packages
		WHERE team_id = ?
		ORDER BY price_cents ASC
	`

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Package, 0)
	for rows.Next() {
		item := &entity.Package{}
		if err := rows.Scan(&item.ID, &item.TeamID, &item.Name, &item.NumGames, &item.PriceCents, &item.Section, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *PackageRepository) Upsert(ctx context.Context, pkg *entity.Package) error {
	query := `
		INSERT INTO packages (team_id, name, num_games, price_cents, section, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		pkg.TeamID, pkg.Name, pkg.NumGames, pkg.PriceCents, pkg.Section, pkg.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	pkg.ID = uint64(id)
	return nil
}
