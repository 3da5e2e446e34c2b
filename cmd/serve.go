package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	authclient "github.com/vibast-solutions/lib-go-auth/client"
	authmiddleware "github.com/vibast-solutions/lib-go-auth/middleware"
	authlibservice "github.com/vibast-solutions/lib-go-auth/service"
	"github.com/vibast-solutions/ms-go-season-tickets/app/controller"
	grpcserver "github.com/vibast-solutions/ms-go-season-tickets/app/grpc"
	"github.com/vibast-solutions/ms-go-season-tickets/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  "Start both HTTP (Echo) and gRPC servers for the season tickets service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type controllers struct {
	catalog       *controller.CatalogController
	subscriptions *controller.SubscriptionController
	tickets       *controller.TicketController
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()

	db, closeDB := mustOpenDB(cfg)
	defer closeDB()

	allocator, closeAllocator := mustCreateAllocator(cfg)
	defer closeAllocator()

	svc := newServices(cfg, db, allocator)
	grpcSeasonTicketsServer := grpcserver.NewServer(svc.catalog, svc.subscriptions, svc.tickets, svc.renewals)
	ctrl := controllers{
		catalog:       controller.NewCatalogController(svc.catalog),
		subscriptions: controller.NewSubscriptionController(svc.subscriptions, svc.renewals),
		tickets:       controller.NewTicketController(svc.tickets),
	}

	authGRPCClient, err := authclient.NewGRPCClientFromAddr(context.Background(), cfg.InternalEndpoints.AuthGRPCAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize auth gRPC client")
	}
	defer authGRPCClient.Close()
	internalAuthService := authlibservice.NewInternalAuthService(authGRPCClient)
	echoInternalAuthMiddleware := authmiddleware.NewEchoInternalAuthMiddleware(internalAuthService)
	grpcInternalAuthMiddleware := authmiddleware.NewGRPCInternalAuthMiddleware(internalAuthService)

	if cfg.Jobs.ServeRenewals {
		renewals := mustScheduleRenewals(cfg, svc.renewals)
		renewals.Start()
		defer stopRenewals(renewals)
	}

	e := setupHTTPServer(ctrl, echoInternalAuthMiddleware, cfg.App.ServiceName)
	grpcSrv, lis := setupGRPCServer(cfg, grpcSeasonTicketsServer, grpcInternalAuthMiddleware, cfg.App.ServiceName)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	go func() {
		logrus.WithField("addr", lis.Addr().String()).Info("Starting gRPC server")
		if err := grpcSrv.Serve(lis); err != nil {
			logrus.WithError(err).Fatal("gRPC server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}
	grpcSrv.GracefulStop()

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	ctrl controllers,
	internalAuthMiddleware *authmiddleware.EchoInternalAuthMiddleware,
	appServiceName string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string {
			return fmt.Sprintf("rest-%s", uuid.New().String())
		},
	}))
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			if v.Status >= http.StatusInternalServerError {
				entry.Error("http_request")
				return nil
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", ctrl.subscriptions.Health)

	requireInternal := internalAuthMiddleware.RequireInternalAccess(appServiceName)

	teams := e.Group("/teams", requireInternal)
	teams.GET("", ctrl.catalog.ListTeams)
	teams.GET("/:id/packages", ctrl.catalog.ListPackages)

	subscriptions := e.Group("/subscriptions", requireInternal)
	subscriptions.POST("", ctrl.subscriptions.CreateSubscription)
	subscriptions.GET("/:id", ctrl.subscriptions.GetSubscription)
	subscriptions.PUT("/:id/renew", ctrl.subscriptions.RenewSubscription)
	subscriptions.POST("/:id/cancel", ctrl.subscriptions.CancelSubscription)
	subscriptions.PUT("/:id/settings", ctrl.subscriptions.UpdateSettings)
	subscriptions.POST("/:id/calculate-price", ctrl.subscriptions.CalculatePrice)
	subscriptions.GET("/:id/renewals", ctrl.subscriptions.ListRenewalHistory)
	subscriptions.POST("/:id/assign-ticket", ctrl.tickets.AssignTicket)
	subscriptions.POST("/:id/use-ticket", ctrl.tickets.UseTicket)

	games := e.Group("/games", requireInternal)
	games.POST("/:id/assign-seats", ctrl.tickets.AssignSeatsForGame)

	renewals := e.Group("/renewals", requireInternal)
	renewals.POST("/run", ctrl.subscriptions.RunRenewals)

	return e
}

func setupGRPCServer(
	cfg *config.Config,
	seasonTicketsServer *grpcserver.Server,
	internalAuthMiddleware *authmiddleware.GRPCInternalAuthMiddleware,
	appServiceName string,
) (*grpc.Server, net.Listener) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoveryInterceptor(),
			grpcserver.RequestIDInterceptor(),
			grpcserver.LoggingInterceptor(),
			internalAuthMiddleware.UnaryRequireInternalAccess(appServiceName),
		),
	)
	grpcserver.RegisterSeasonTicketsServiceServer(grpcSrv, seasonTicketsServer)

	return grpcSrv, lis
}
