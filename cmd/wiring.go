package cmd

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-season-tickets/app/payment"
	"github.com/vibast-solutions/ms-go-season-tickets/app/repository"
	"github.com/vibast-solutions/ms-go-season-tickets/app/seat"
	"github.com/vibast-solutions/ms-go-season-tickets/app/service"
	"github.com/vibast-solutions/ms-go-season-tickets/config"
)

type services struct {
	catalog       *service.CatalogService
	subscriptions *service.SubscriptionService
	tickets       *service.TicketService
	renewals      *service.RenewalEngine
}

func newServices(cfg *config.Config, db *sql.DB, allocator seat.Allocator) *services {
	tx := repository.NewTxManager(db)
	clock := service.SystemClock{}

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	assignmentRepo := repository.NewGameAssignmentRepository(db)
	historyRepo := repository.NewRenewalHistoryRepository(db)

	subscriptionService := service.NewSubscriptionService(tx, subscriptionRepo, packageRepo, clock, cfg.Subscriptions)
	return &services{
		catalog:       service.NewCatalogService(teamRepo, packageRepo),
		subscriptions: subscriptionService,
		tickets:       service.NewTicketService(subscriptionRepo, assignmentRepo, teamRepo, allocator, clock),
		renewals: service.NewRenewalEngine(
			tx,
			subscriptionRepo,
			historyRepo,
			subscriptionService,
			payment.NewStubGateway(packageRepo),
			clock,
			cfg.Subscriptions,
		),
	}
}

// mustCreateAllocator picks the seat allocator from SEAT_ALLOCATOR. The
// returned cleanup closes the Redis client when one was opened.
func mustCreateAllocator(cfg *config.Config) (seat.Allocator, func()) {
	if cfg.Seats.Allocator != config.SeatAllocatorRedis {
		return seat.NewRandomAllocator(cfg.Seats.MaxSeat), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		logrus.WithError(err).WithField("addr", cfg.Redis.Addr).Fatal("Failed to connect to redis")
	}

	allocator := seat.NewRedisAllocator(client, cfg.Seats.MaxSeat, cfg.Seats.Attempts, cfg.Seats.ReservationTTL)
	return allocator, func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close redis client")
		}
	}
}
