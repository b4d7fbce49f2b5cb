package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"hotel-platform/config"
	"hotel-platform/controllers"
	"hotel-platform/events"
	"hotel-platform/metrics"
	"hotel-platform/middleware"
	"hotel-platform/routes"
	"hotel-platform/services"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults to CONFIG_PATH)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid config")
	}
	log := config.NewLogger(cfg.Logging)
	metrics.Register()

	db, err := config.ConnectDatabase(cfg.Database, cfg.Auth, log)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("database handle")
	}
	defer sqlDB.Close()
	log.WithField("driver", cfg.Database.Driver).Info("database ready")

	// events are optional; a nil interface value drops them
	var publisher events.Publisher
	if cfg.RabbitMQ.URL != "" {
		rp, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, domain events disabled")
		} else {
			defer rp.Close()
			publisher = rp
		}
	}

	bookingService := services.NewBookingService(db, publisher, log)
	paymentService := services.NewPaymentService(db, publisher, log)
	foodOrderService := services.NewFoodOrderService(db, publisher, log)
	serviceRequestService := services.NewServiceRequestService(db, publisher, log)
	authService := services.NewAuthService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	ctl := routes.Controllers{
		Auth:     controllers.NewAuthController(authService),
		Bookings: controllers.NewBookingController(bookingService, services.NewExportService(db)),
		Payments: controllers.NewPaymentController(paymentService, bookingService),
		Branches: controllers.NewBranchController(services.NewBranchService(db)),
		Rooms:    controllers.NewRoomController(services.NewRoomService(db)),
		Menu:     controllers.NewMenuItemController(services.NewMenuItemService(db)),
		Food:     controllers.NewFoodOrderController(foodOrderService, bookingService),
		Service:  controllers.NewServiceRequestController(serviceRequestService),
	}

	stopCleanup := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
	limiter.StartCleanup(5*time.Minute, stopCleanup)

	router := routes.SetupRouter(ctl, routes.Options{
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		CORSOrigins: cfg.CORS.Origins,
		Logger:      log,
		AuthLimiter: limiter,
		HealthCheck: sqlDB.PingContext,
	})

	addr := ":" + cfg.App.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")
	close(stopCleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return
	}
	log.Info("server stopped gracefully")
}
