package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/checkin/config"
	"github.com/Domenick1991/checkin/internal/bus"
	"github.com/Domenick1991/checkin/internal/remote"
	"github.com/Domenick1991/checkin/internal/service/checkin"
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

	rpcClient := bus.NewClient(producer, cfg.Kafka.RepliesTopic)
	replies := bus.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-checkin-"+uuid.NewString(), cfg.Kafka.RepliesTopic)
	defer replies.Close()
	go func() {
		if err := rpcClient.Run(ctx, replies); err != nil && ctx.Err() == nil {
			log.Printf("reply consumer stopped: %v", err)
		}
	}()

	timeout := cfg.Workflow.RPCTimeout()
	service := checkin.NewService(
		remote.NewSessionClient(rpcClient, cfg.Kafka.SessionTopic, timeout),
		remote.NewAuthClient(rpcClient, cfg.Kafka.AuthTopic, timeout),
		remote.NewOrderClient(rpcClient, cfg.Kafka.OrdersTopic, timeout),
		remote.NewRegistrationClient(rpcClient, cfg.Kafka.RegistrationTopic, timeout),
		remote.NewBaggageClient(rpcClient, cfg.Kafka.BaggageTopic, timeout),
		producer,
		cfg.Kafka.StatusEventsTopic,
		cfg.Workflow.AuthLogin,
		cfg.Workflow.AuthPassword,
	)

	server := bus.NewServer(producer)
	server.Handle(remote.KindCheckIn, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var req checkin.CheckInRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		return service.CheckIn(ctx, req)
	})

	requests := bus.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.CheckInTopic)
	defer requests.Close()

	log.Printf("check-in service consuming %s", cfg.Kafka.CheckInTopic)
	if err := server.Run(ctx, requests); err != nil && ctx.Err() == nil {
		log.Fatalf("rpc server error: %v", err)
	}
}
