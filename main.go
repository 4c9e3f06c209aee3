package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"myhotel/config"
	"myhotel/controllers"
	"myhotel/routes"
	"myhotel/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	port := pflag.String("port", "", "listen port (overrides PORT)")
	seed := pflag.Bool("seed", true, "seed permissions, default roles and the admin user on start")
	migrateOnly := pflag.Bool("migrate-only", false, "apply migrations and seed data, then exit")
	pflag.Parse()

	if err := run(*envFile, *port, *seed, *migrateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "myhotel: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile, port string, seed, migrateOnly bool) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port != "" {
		cfg.Port = port
	}
	if !pflag.CommandLine.Changed("seed") {
		seed = cfg.Seed
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	db, err := config.OpenDatabase(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database ready", zap.String("driver", cfg.DB.Driver), zap.String("database", cfg.DB.Name))

	ctx := context.Background()
	if seed {
		data, err := config.DefaultSeed()
		if err != nil {
			return fmt.Errorf("parse seed: %w", err)
		}
		if err := config.Seed(ctx, db, data, cfg.Admin, logger); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	if migrateOnly {
		logger.Info("migrations applied, exiting")
		return nil
	}

	store, err := config.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer store.Close()

	if cfg.Paystack.SecretKey == "" {
		logger.Warn("PAYSTACK_SECRET_KEY is not set; payment verification and webhooks will fail")
	}

	ledger := services.NewLedger(db)
	availability := services.NewAvailabilityService(db, logger)
	bookings := services.NewBookingService(db, ledger, logger)
	guests := services.NewGuestService(db, ledger, logger)
	contacts := services.NewContactService(db, ledger, logger)
	inventory := services.NewInventoryService(db, ledger, logger)
	perms := services.NewPermissionService(db, logger)
	users := services.NewUserService(db, ledger, logger)
	auth := services.NewAuthService(db, store, cfg.AuthTokenTTL, logger)
	export := services.NewExportService(bookings, guests, logger)
	paystack := services.NewPaystackClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, logger)
	payments := services.NewPaymentService(store, paystack, bookings, cfg.Paystack.SecretKey, cfg.PaymentIntentTTL, logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(routes.Controllers{
		Availability: controllers.NewAvailabilityController(availability, logger),
		Bookings:     controllers.NewBookingController(bookings, payments, export, logger),
		Payments:     controllers.NewPaymentController(payments, logger),
		Guests:       controllers.NewGuestController(guests, logger),
		Contacts:     controllers.NewContactController(contacts, logger),
		Inventory:    controllers.NewInventoryController(inventory, logger),
		Roles:        controllers.NewRoleController(perms, logger),
		Users:        controllers.NewUserController(users, perms, logger),
		Auth:         controllers.NewAuthController(auth, users, logger),
	}, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		Tokens:      auth,
		Principals:  perms,
		Log:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
