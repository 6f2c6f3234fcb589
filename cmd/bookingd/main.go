package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/api"
	"laundry-booking-backend/internal/db"
	"laundry-booking-backend/internal/metrics"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/notification"
	"laundry-booking-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "bookingd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded from %s", configPath)

	weekStart, err := cfg.Booking.WeekStart()
	if err != nil {
		logger.Fatalf("invalid booking configuration: %v", err)
	}
	loc, err := cfg.Booking.Location()
	if err != nil {
		logger.Fatalf("invalid booking timezone %q: %v", cfg.Booking.Timezone, err)
	}

	d := cfg.Booking.Defaults
	defaults := &model.Settings{
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		WashDuration:  d.WashDurationMinutes,
		BreakAfter:    d.BreakAfter,
		BreakDuration: d.BreakDurationMinutes,
		SlotsPerDay:   d.SlotsPerDay,
		WeeklyLimit:   d.WeeklyLimit,
		MonthlyLimit:  d.MonthlyLimit,
		AutoGenerate:  d.AutoGenerate,
	}

	gormDB, err := db.Init(&cfg.Database, defaults)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized")

	appStore := store.NewGormStore(gormDB, store.Options{WeekStart: weekStart})
	metrics.Register(appStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Web push is optional: without VAPID keys the subscription endpoints
	// still store subscriptions, but no notifications go out.
	var webpushOptions *webpush.Options
	var pool *notification.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		logger.Printf("notification worker pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured; web push notifications disabled")
	}

	var notifier api.Notifier
	if pool != nil {
		notifier = pool
	}
	handler := api.NewHandler(appStore, webpushOptions, notifier, loc)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
