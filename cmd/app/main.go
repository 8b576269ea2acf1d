package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantumair/qbooking/config"
	"github.com/quantumair/qbooking/internal/bootstrap"
	"github.com/quantumair/qbooking/internal/cache"
	"github.com/quantumair/qbooking/internal/kafka"
	"github.com/quantumair/qbooking/internal/quantum"
	"github.com/quantumair/qbooking/internal/repository"
	"github.com/quantumair/qbooking/internal/service/booking"
	"github.com/quantumair/qbooking/internal/service/flights"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	caps, err := quantum.CapabilitiesFromConfig(cfg.Quantum)
	if err != nil {
		log.Fatalf("quantum config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	cacheTTL := time.Duration(cfg.Booking.FlightsCacheTTL) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, cacheTTL)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	entropy := quantum.NewEntropyService(caps)
	encrypter := quantum.NewEncryptionService(caps)
	signer, err := quantum.NewSignatureService(caps)
	if err != nil {
		log.Fatalf("signature service: %v", err)
	}

	flightRepo := repository.NewFlightRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	flightService := flights.NewFlightService(flightRepo, seatRepo, redisCache, cacheTTL)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		entropy,
		encrypter,
		signer,
		caps,
		cfg.Booking.ReferenceLength,
		time.Duration(cfg.Booking.SeatHoldTTL)*time.Second,
		booking.WithCache(redisCache),
		booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, caps, flightService, bookingService, pool, redisCache); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
