package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/order-tracker/internal/config"
	"github.com/ignite/order-tracker/internal/events"
	"github.com/ignite/order-tracker/internal/metrics"
	"github.com/ignite/order-tracker/internal/notify"
	"github.com/ignite/order-tracker/internal/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting order notification worker...")

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	metrics.MustRegister()

	db, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Broker.Addr,
		Password: cfg.Broker.Password,
		DB:       cfg.Broker.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Failed to ping redis broker: %v", err)
	}
	pingCancel()
	log.Println("Connected to broker")

	st := store.New(db)
	composer := notify.NewEmailComposer(notify.NewSMTPMailer(cfg.SMTP))
	consumer := events.NewConsumer(redisClient, cfg.Broker, st, composer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}
	log.Printf("Consuming %q as group %q", cfg.Broker.Stream, cfg.Broker.Group)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	consumer.Stop()
	log.Println("Worker stopped")
}
