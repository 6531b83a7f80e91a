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
	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"dialysis-scheduler/config"
	"dialysis-scheduler/internal/api"
	"dialysis-scheduler/internal/attendance"
	"dialysis-scheduler/internal/booking"
	"dialysis-scheduler/internal/clock"
	"dialysis-scheduler/internal/db"
	"dialysis-scheduler/internal/horizon"
	"dialysis-scheduler/internal/notification"
	"dialysis-scheduler/internal/reschedule"
	"dialysis-scheduler/internal/store"
)

func main() {
	// .env is optional; it may carry CONFIG_PATH and is never required in production.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded",
		zap.String("path", configPath),
		zap.String("timezone", cfg.Clinic.Timezone),
		zap.Int("slots_per_period", cfg.Clinic.SlotsPerPeriod))

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Warn("VAPID keys are not configured, push notifications are disabled")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("failed to get sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	clk := clock.New(cfg.Clinic.Location)

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions, logger.Named("notification"))
	pool.Start(ctx)

	initializer := booking.NewInitializer(appStore, cfg.Clinic.SlotsPerPeriod, logger.Named("booking"))
	runner := horizon.NewRunner(cfg.Horizon, initializer, clk, logger.Named("horizon"))
	go runner.Run(ctx)

	handler := api.NewHandler(api.Deps{
		Store:        appStore,
		Initializer:  initializer,
		Bookings:     booking.NewService(appStore, clk, cfg.Clinic.SlotsPerPeriod, logger.Named("booking")),
		Reschedules:  reschedule.NewService(appStore, clk, pool, logger.Named("reschedule")),
		Attendance:   attendance.NewService(appStore, clk, pool, cfg.Clinic.CheckInCutoffHour, logger.Named("attendance")),
		MachineCache: cache.New(time.Duration(cfg.Server.CacheTTLSeconds)*time.Second, 10*time.Minute),
		WebPush:      webpushOptions,
		Logger:       logger.Named("http"),
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(handler, cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	sig := <-stop
	logger.Info("shutdown signal received, stopping services", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown", zap.Error(err))
	}

	cancel()
	pool.Wait()
	logger.Info("server gracefully stopped")
}
