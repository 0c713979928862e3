package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dayflow/internal/app"
	"dayflow/internal/config"
	"dayflow/internal/store"
)

// Worker consumes attendance events and keeps the presence board current.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	if cfg.QueueBackend == app.BackendMemory {
		log.Fatal("worker needs a shared queue; QUEUE_BACKEND=memory only works inside the api process")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		log.Printf("WARNING: redis at %s not reachable yet, will keep retrying", cfg.RedisAddr)
	}

	q := app.NewQueue(cfg, redisClient)
	board := app.NewBoard(cfg, redisClient)

	log.Println("worker started, waiting for events...")
	if err := app.RunPresence(ctx, q, board); err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker stopped")
}
