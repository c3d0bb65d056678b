package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/order-tracker/internal/api"
	"github.com/ignite/order-tracker/internal/auth"
	"github.com/ignite/order-tracker/internal/config"
	"github.com/ignite/order-tracker/internal/events"
	"github.com/ignite/order-tracker/internal/metrics"
	"github.com/ignite/order-tracker/internal/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting order tracker API server...")

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Auth.Secret == "" {
		log.Fatal("SECRET_KEY is required")
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to ping redis broker: %v", err)
	}
	cancel()
	log.Println("Connected to broker")

	st := store.New(db)
	tokens := auth.NewManager(cfg.Auth, st)
	producer := events.NewProducer(redisClient, cfg.Broker)
	handlers := api.NewHandlers(st, tokens, producer)
	router := api.SetupRoutes(handlers, tokens)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      http.TimeoutHandler(router, cfg.Server.Timeout(), `{"error":"request timeout"}`),
		ReadTimeout:  cfg.Server.Timeout(),
		WriteTimeout: cfg.Server.Timeout() + 5*time.Second,
	}

	go func() {
		log.Printf("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
