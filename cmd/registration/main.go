package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/checkin/config"
	"github.com/Domenick1991/checkin/internal/bus"
	"github.com/Domenick1991/checkin/internal/cache"
	"github.com/Domenick1991/checkin/internal/repository"
	"github.com/Domenick1991/checkin/internal/service/registration"
	"github.com/jackc/pgx/v5/pgxpool"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis)
	producer := bus.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	service := registration.NewService(
		repository.NewReservationRepository(pool),
		repository.NewRegistrationRepository(pool),
		repository.NewPaymentRepository(pool),
		redisCache,
		cfg.Cache.ReservationsTTL(),
	)

	server := bus.NewServer(producer)
	registration.RegisterHandlers(server, service)

	requests := bus.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.RegistrationTopic)
	defer requests.Close()

	log.Printf("registration service consuming %s", cfg.Kafka.RegistrationTopic)
	if err := server.Run(ctx, requests); err != nil && ctx.Err() == nil {
		log.Fatalf("rpc server error: %v", err)
	}
}
