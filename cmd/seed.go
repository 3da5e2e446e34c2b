package cmd

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-season-tickets/app/repository"
	"github.com/vibast-solutions/ms-go-season-tickets/app/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the reference teams and packages",
	Run:   runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()

	db, closeDB := mustOpenDB(cfg)
	defer closeDB()

	runJob("seed", func() error {
		result, err := seed.Run(
			context.Background(),
			repository.NewTxManager(db),
			repository.NewTeamRepository(db),
			repository.NewPackageRepository(db),
			seed.ReferenceCatalog,
			time.Now().UTC(),
		)
		if err != nil {
			return err
		}
		logrus.WithField("teams", result.Teams).WithField("packages", result.Packages).Info("Catalog seeded")
		return nil
	})
}
