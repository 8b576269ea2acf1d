package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantumair/qbooking/config"
	"github.com/quantumair/qbooking/internal/cache"
	"github.com/quantumair/qbooking/internal/email"
	"github.com/quantumair/qbooking/internal/kafka"
	"github.com/quantumair/qbooking/internal/repository"
	"github.com/quantumair/qbooking/internal/service/flights"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	cacheTTL := time.Duration(cfg.Booking.FlightsCacheTTL) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, cacheTTL)

	flightRepo := repository.NewFlightRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	flightService := flights.NewFlightService(flightRepo, seatRepo, redisCache, cacheTTL)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
			logger.Info("booking event", "type", event.Type, "reference", event.Reference, "flight_id", event.FlightID, "seat", event.Seat)
			return emailSender.Send(ctx, event)
		}); err != nil {
			logger.Error("consumer stopped", "error", err)
		}
	}()

	warmTicker := time.NewTicker(cfg.Worker.CacheWarmInterval())
	defer warmTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-warmTicker.C:
			// Re-populates the flights cache so reads after an
			// invalidation do not all hit Postgres at once.
			if _, err := flightService.List(ctx); err != nil {
				logger.Error("warm flights cache", "error", err)
			}
		case s := <-sig:
			logger.Info("shutting down", "signal", s.String())
			return
		}
	}
}
