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
	"go.uber.org/zap"

	"hotel-reservations/config"
	"hotel-reservations/controllers"
	"hotel-reservations/queue"
	"hotel-reservations/repositories"
	"hotel-reservations/routes"
	"hotel-reservations/services"
	"hotel-reservations/utils"
)

func main() {
	cfg := config.Load()

	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET environment variable is not set")
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := utils.RegisterValidators(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}

	var publisher services.EventPublisher = services.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		publisher = queue.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventQueue, logger)
		logger.Info("publishing reservation events", zap.String("queue", cfg.EventQueue))
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unreachable; rate limiting disabled")
	}

	// rooms and reservations share one lock table
	store := repositories.NewStore(db)
	locks := services.NewLocker()

	roomService := services.NewRoomService(store, locks, publisher, logger)
	customerService := services.NewCustomerService(store, locks, logger)
	reservationService := services.NewReservationService(store, locks, publisher, logger)
	authService := services.NewAuthService(store, cfg.JWTSecret)

	router := routes.SetupRouter(routes.Deps{
		Config:       cfg,
		Log:          logger,
		Redis:        rdb,
		Rooms:        controllers.NewRoomController(roomService, logger),
		Customers:    controllers.NewCustomerController(customerService, logger),
		Reservations: controllers.NewReservationController(reservationService, logger),
		Auth:         controllers.NewAuthController(authService, logger),
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.Info("server stopped")
}
