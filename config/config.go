package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App               AppConfig
	HTTP              ServerConfig
	GRPC              ServerConfig
	MySQL             MySQLConfig
	Redis             RedisConfig
	Log               LogConfig
	InternalEndpoints InternalEndpointsConfig
	Subscriptions     SubscriptionConfig
	Seats             SeatConfig
	Jobs              JobsConfig
}

type AppConfig struct {
	ServiceName string
	APIKey      string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level string
}

type InternalEndpointsConfig struct {
	AuthGRPCAddr string
}

type SubscriptionConfig struct {
	FullYearDays   int64
	BillingTimeout time.Duration
	Location       *time.Location
}

const (
	SeatAllocatorRandom = "random"
	SeatAllocatorRedis  = "redis"
)

type SeatConfig struct {
	Allocator      string
	MaxSeat        int32
	Attempts       int
	ReservationTTL time.Duration
}

// JobsConfig controls the renewal schedule. ServeRenewals runs it inside
// serve so the admin trigger and the cron share one engine.
type JobsConfig struct {
	RenewalSchedule string
	ServeRenewals   bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	location, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	allocator := strings.ToLower(getEnv("SEAT_ALLOCATOR", SeatAllocatorRandom))
	if allocator != SeatAllocatorRandom && allocator != SeatAllocatorRedis {
		return nil, fmt.Errorf("SEAT_ALLOCATOR must be %q or %q, got %q", SeatAllocatorRandom, SeatAllocatorRedis, allocator)
	}

	fullYearDays := int64(getIntEnv("FULL_YEAR_DAYS", 365))
	if fullYearDays <= 0 {
		return nil, errors.New("FULL_YEAR_DAYS must be positive")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "season-tickets-service"),
			APIKey:      getEnv("APP_API_KEY", ""),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Log: LogConfig{Level: getEnv("LOG_LEVEL", "info")},
		InternalEndpoints: InternalEndpointsConfig{
			AuthGRPCAddr: getEnv("AUTH_SERVICE_GRPC_ADDR", "localhost:9090"),
		},
		Subscriptions: SubscriptionConfig{
			FullYearDays:   fullYearDays,
			BillingTimeout: time.Duration(getIntEnv("BILLING_TIMEOUT_SECONDS", 30)) * time.Second,
			Location:       location,
		},
		Seats: SeatConfig{
			Allocator:      allocator,
			MaxSeat:        int32(getIntEnv("SEAT_MAX", 20000)),
			Attempts:       getIntEnv("SEAT_ALLOCATION_ATTEMPTS", 16),
			ReservationTTL: time.Duration(getIntEnv("SEAT_RESERVATION_TTL_HOURS", 0)) * time.Hour,
		},
		Jobs: JobsConfig{
			RenewalSchedule: getEnv("RENEWAL_SCHEDULE", "@every 1h"),
			ServeRenewals:   getBoolEnv("SERVE_RENEWALS", true),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
