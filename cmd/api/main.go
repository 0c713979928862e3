package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"dayflow/internal/app"
	"dayflow/internal/auth"
	"dayflow/internal/config"
	"dayflow/internal/handler"
	"dayflow/internal/metrics"
	"dayflow/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	stores, err := app.OpenStores(ctx, cfg)
	if err == nil && cfg.EnsureIndexes {
		err = stores.EnsureIndexes(ctx)
	}
	cancel()
	if err != nil {
		return err
	}
	defer stores.Close(context.Background())

	var redisClient *store.Redis
	if app.UsesRedis(cfg) {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
	}

	uploader := app.NewUploader(cfg)
	if uploader != nil {
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured, avatar uploads disabled")
	}

	svc := app.NewServices(stores, loc, uploader)
	checks := map[string]handler.HealthCheck{"store": stores.Healthy}
	if redisClient != nil {
		checks["redis"] = redisClient.Healthy
	}

	events := app.NewQueue(cfg, redisClient)
	board := app.NewBoard(cfg, redisClient)
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if cfg.QueueBackend == app.BackendMemory {
		// no worker can see an in-process queue
		go func() {
			if err := app.RunPresence(bgCtx, events, board); err != nil {
				log.Printf("presence consumer: %v", err)
			}
		}()
	}

	h := handler.New(handler.Deps{
		Attendance: svc.Attendance,
		Leaves:     svc.Leaves,
		Payroll:    svc.Payroll,
		Profiles:   svc.Profiles,
		Events:     events,
		Board:      board,
		Metrics:    metrics.New(),
		Checks:     checks,
	})
	r := handler.Router(h, handler.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Auth:        auth.OwnerAuth(cfg.JWTSigningKey, cfg.JWTIssuer),
		Limiter:     app.NewLimiter(cfg, redisClient),
		AccessLog:   true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (store=%s, tz=%s)", cfg.HTTPPort, stores.Backend, loc)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
