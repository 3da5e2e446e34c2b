package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-season-tickets/app/scheduler"
	"github.com/vibast-solutions/ms-go-season-tickets/app/seat"
	"github.com/vibast-solutions/ms-go-season-tickets/app/service"
	"github.com/vibast-solutions/ms-go-season-tickets/config"
)

var renewWorker bool

var renewCmd = &cobra.Command{
	Use:   "renew",
	Short: "Charge and extend due auto-renew subscriptions",
	Long:  "Run one renewal batch, or with --worker keep running batches on RENEWAL_SCHEDULE.",
	Run:   runRenew,
}

func init() {
	rootCmd.AddCommand(renewCmd)
	renewCmd.Flags().BoolVar(&renewWorker, "worker", false, "Run continuously on the configured cron schedule")
}

func runRenew(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()

	db, closeDB := mustOpenDB(cfg)
	defer closeDB()

	// Renewals never allocate seats.
	engine := newServices(cfg, db, seat.NewRandomAllocator(cfg.Seats.MaxSeat)).renewals

	if !renewWorker {
		runJob("renew", func() error { return runRenewalBatch(context.Background(), engine) })
		return
	}

	s := mustScheduleRenewals(cfg, engine)
	runJob("renew", func() error { return runRenewalBatch(context.Background(), engine) })
	s.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.WithField("job", "renew").Info("Worker shutdown requested")

	stopRenewals(s)
}

func mustScheduleRenewals(cfg *config.Config, engine *service.RenewalEngine) *scheduler.Scheduler {
	s := scheduler.New(cfg.Subscriptions.Location)
	if err := s.Register(cfg.Jobs.RenewalSchedule, "renew", func(ctx context.Context) {
		runJob("renew", func() error { return runRenewalBatch(ctx, engine) })
	}); err != nil {
		logrus.WithError(err).Fatal("Failed to schedule renewals")
	}
	return s
}

func stopRenewals(s *scheduler.Scheduler) {
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		logrus.WithError(err).Warn("Renewal batch still running at shutdown")
	}
}

func runRenewalBatch(ctx context.Context, engine *service.RenewalEngine) error {
	result, err := engine.RunOnce(ctx)
	if err != nil {
		return err
	}
	entry := logrus.WithFields(logrus.Fields{
		"job":       "renew",
		"processed": result.Processed,
		"failed":    result.Failed,
		"skipped":   result.Skipped,
	})
	if len(result.Unreconciled) > 0 {
		entry.WithField("unreconciled", result.Unreconciled).Error("Charged renewals need reconciliation")
		return nil
	}
	entry.Info("Renewal batch done")
	return nil
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
