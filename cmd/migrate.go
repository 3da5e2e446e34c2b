package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-season-tickets/app/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Run: func(_ *cobra.Command, _ []string) {
		runMigration("migrate_up", migrations.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	Run: func(_ *cobra.Command, _ []string) {
		runMigration("migrate_down", migrations.Down)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print applied and pending migrations",
	Run: func(_ *cobra.Command, _ []string) {
		runMigration("migrate_status", migrations.Status)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigration(name string, fn migrations.Func) {
	cfg := mustLoadConfig()

	db, closeDB := mustOpenDB(cfg)
	defer closeDB()

	runJob(name, func() error { return fn(db) })

	version, err := migrations.Version(db)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read schema version")
		return
	}
	logrus.WithField("version", version).Info("Schema version")
}
