package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fkhayef/giftlist/docs"
	"github.com/fkhayef/giftlist/internal/auth"
	"github.com/fkhayef/giftlist/internal/claim"
	"github.com/fkhayef/giftlist/internal/config"
	"github.com/fkhayef/giftlist/internal/database"
	"github.com/fkhayef/giftlist/internal/friend"
	"github.com/fkhayef/giftlist/internal/metrics"
	"github.com/fkhayef/giftlist/internal/notification"
	"github.com/fkhayef/giftlist/internal/reminder"
	"github.com/fkhayef/giftlist/internal/user"
	"github.com/fkhayef/giftlist/internal/wishlist"
	"github.com/fkhayef/giftlist/pkg/logger"
	mw "github.com/fkhayef/giftlist/pkg/middleware"
)

// @title        Giftlist API
// @version      1.0
// @description  Wishlists shared with friends, with claims hidden from the people receiving the gifts.
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	log := logger.New(cfg.LogLevel)

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	log.Info("Connected to database successfully")

	if err := database.Migrate(db, cfg.MigrationsPath, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Notification feature: the registry is fixed at startup
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo, notification.DefaultRegistry(), log)
	notificationHandler := notification.NewHandler(notificationService)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, log)
	userHandler := user.NewHandler(userService)

	// Friend feature
	friendRepo := friend.NewRepository(db)
	friendService := friend.NewService(friendRepo, userService, notificationService, log)
	friendHandler := friend.NewHandler(friendService)

	// Claim feature
	claimRepo := claim.NewRepository(db)
	claimService := claim.NewService(claimRepo, friendService, userService, notificationService, cfg.RevealClaimedToOwner, log)
	claimHandler := claim.NewHandler(claimService)

	// Wishlist feature
	wishlistRepo := wishlist.NewRepository(db)
	wishlistService := wishlist.NewService(wishlistRepo, claimService, friendService, userService, notificationService, log)
	wishlistHandler := wishlist.NewHandler(wishlistService)

	var validator mw.TokenValidator
	if cfg.JWTSecret != "" {
		validator = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour)
	}
	if cfg.DevUserHeader {
		log.Warnf("%s header authentication is enabled; do not use in production", mw.TestUserHeader)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.MetricsEnabled {
		r.Use(metrics.HTTPMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(validator, cfg.DevUserHeader))

		r.Mount("/users", userHandler.Routes())
		r.Mount("/friends", friendHandler.Routes())
		r.Mount("/wishlists", wishlistHandler.Routes())
		r.Mount("/items", claimHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := reminder.NewScheduler(userService, friendService, notificationService, cfg.ReminderInterval, cfg.ReminderLeadDays, log)
	go scheduler.Start(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
