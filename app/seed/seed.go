package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
	"github.com/vibast-solutions/ms-go-season-tickets/app/factory"
)

type teamUpserter interface {
	Upsert(ctx context.Context, team *entity.Team) error
}

type packageUpserter interface {
	Upsert(ctx context.Context, pkg *entity.Package) error
}

type txManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TeamSeed struct {
	Team     entity.Team
	Packages []entity.Package
}

// ReferenceCatalog is the demo catalog loaded by the seed command.
var ReferenceCatalog = []TeamSeed{
	{
		Team: entity.Team{Name: "New York Yankees", League: "MLB", City: "New York", Season: 2024, TotalGames: 162},
		Packages: []entity.Package{
			{Name: "Gold Package", NumGames: 20, PriceCents: 500000, Section: "101"},
			{Name: "Silver Package", NumGames: 10, PriceCents: 250000, Section: "202"},
		},
	},
	{
		Team: entity.Team{Name: "Los Angeles Lakers", League: "NBA", City: "Los Angeles", Season: 2024, TotalGames: 82},
		Packages: []entity.Package{
			{Name: "Premium", NumGames: 30, PriceCents: 750000, Section: "100"},
			{Name: "Standard", NumGames: 15, PriceCents: 375000, Section: "300"},
		},
	},
	{
		Team: entity.Team{Name: "Dallas Cowboys", League: "NFL", City: "Dallas", Season: 2024, TotalGames: 17},
		Packages: []entity.Package{
			{Name: "VIP", NumGames: 8, PriceCents: 1000000, Section: "1"},
		},
	},
}

type Result struct {
	Teams    int
	Packages int
}

// Run upserts catalog in one transaction. Re-running it is a no-op on rows
// that already exist.
func Run(ctx context.Context, tx txManager, teams teamUpserter, packages packageUpserter, catalog []TeamSeed, now time.Time) (*Result, error) {
	logger := factory.NewModuleLogger("seed")
	result := &Result{}

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, item := range catalog {
			team := item.Team
			team.CreatedAt = now
			if err := teams.Upsert(ctx, &team); err != nil {
				return fmt.Errorf("upsert team %q: %w", team.Name, err)
			}
			result.Teams++
			logger.WithField("team_id", team.ID).WithField("name", team.Name).Info("Team seeded")

			for _, p := range item.Packages {
				pkg := p
				pkg.TeamID = team.ID
				pkg.CreatedAt = now
				if err := packages.Upsert(ctx, &pkg); err != nil {
					return fmt.Errorf("upsert package %q of team %q: %w", pkg.Name, team.Name, err)
				}
				result.Packages++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
