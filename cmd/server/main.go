package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"parkride/internal/app"
	"parkride/internal/config"
	"parkride/internal/handler"
	internalRedis "parkride/internal/redis"
	"parkride/internal/service"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	log, logCloser := app.NewLogger(cfg.Log)
	defer logCloser.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before the store so we can instrument it).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
			nrApp = nil
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	repos, err := app.OpenRepositories(ctx, cfg, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to store")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := repos.Close(closeCtx); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()
	log.WithField("driver", cfg.Store.Driver).Info("connected to store")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisClient.Close()
		log.WithField("addr", cfg.Redis.Addr).Info("connected to redis")
	}

	server := wireServer(repos, redisClient, nrApp, cfg, log)

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(repos *app.Repositories, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log *logrus.Logger) *http.Server {
	// The stores stay untyped nil without redis so services skip them.
	var (
		cache     internalRedis.FacilityCacheInterface
		lockStore internalRedis.LockStoreInterface
	)
	if redisClient != nil {
		cache = internalRedis.NewCacheStore(redisClient)
		lockStore = internalRedis.NewLockStore(redisClient)
	}

	// Initialize services.
	notificationService := service.NewNotificationService(log.WithField("component", "notification"))
	catalogService := service.NewCatalogService(repos.Facilities, cache, log.WithField("component", "catalog"))
	bookingService := service.NewBookingService(
		repos.Facilities,
		repos.Bookings,
		repos.Payments,
		cache,
		notificationService,
		log.WithField("component", "booking"),
		cfg.Booking.Currency,
	)
	reviewService := service.NewReviewService(repos.Facilities, repos.Bookings, lockStore, cache, log.WithField("component", "review"))
	paymentService := service.NewPaymentService(repos.Payments, repos.Bookings, service.NewMockPSP(), notificationService, log.WithField("component", "payment"))

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		FacilityHandler: handler.NewFacilityHandler(catalogService, reviewService),
		BookingHandler:  handler.NewBookingHandler(bookingService),
		PaymentHandler:  handler.NewPaymentHandler(paymentService),
		UserHandler:     handler.NewUserHandler(bookingService, paymentService),
		JWTSecret:       cfg.Auth.JWTSecret,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		Logger:          log,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
