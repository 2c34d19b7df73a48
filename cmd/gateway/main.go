package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/checkin/api"
	"github.com/Domenick1991/checkin/config"
	"github.com/Domenick1991/checkin/internal/bootstrap"
	"github.com/Domenick1991/checkin/internal/bus"
	"github.com/Domenick1991/checkin/internal/remote"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

	producer := bus.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	// Every instance consumes the full reply topic under its own group and
	// drops correlation ids it does not own.
	rpcClient := bus.NewClient(producer, cfg.Kafka.RepliesTopic)
	replies := bus.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-gateway-"+uuid.NewString(), cfg.Kafka.RepliesTopic)
	defer replies.Close()
	go func() {
		if err := rpcClient.Run(ctx, replies); err != nil && ctx.Err() == nil {
			log.Printf("reply consumer stopped: %v", err)
		}
	}()

	checkInClient := remote.NewCheckInClient(rpcClient, cfg.Kafka.CheckInTopic, cfg.Workflow.GatewayTimeout())

	router := gin.Default()
	handler := api.NewCheckInHandler(checkInClient)
	handler.Register(router.Group("/api"))

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
