package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcapi "hotel-booking-backend/internal/api/grpc"
	"hotel-booking-backend/internal/api/grpc/interceptor"
	httpapi "hotel-booking-backend/internal/api/http"
	"hotel-booking-backend/internal/clock"
	"hotel-booking-backend/internal/config"
	"hotel-booking-backend/internal/jobs"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
	"hotel-booking-backend/internal/repository/memory"
	"hotel-booking-backend/internal/repository/postgres"
	"hotel-booking-backend/internal/scheduler"
	"hotel-booking-backend/internal/security"
	"hotel-booking-backend/internal/seed"
	"hotel-booking-backend/internal/service"
	"hotel-booking-backend/migrations"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Apply pending database migrations before serving")
	seedPath := flag.String("seed", "", "Seed rooms and inventory from this file before serving")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Hotel Booking Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetHTTPAddress(), "grpc_port", cfg.Server.GRPCPort)

	// Initialize Store
	var (
		store   repository.Store
		catalog repository.RoomCatalogWriter
		pinger  httpapi.Pinger
	)
	switch cfg.Store.Type {
	case config.StoreTypeMemory:
		logger.Info("Using in-memory store", "lock_timeout", cfg.LockTimeout())
		mem := memory.NewStore(memory.WithLockTimeout(cfg.LockTimeout()))
		store, catalog = mem, mem
	default:
		db := openDatabase(cfg)
		defer db.Close()

		if *migrate {
			if err := migrations.Apply(context.Background(), db); err != nil {
				logger.Error("Failed to apply migrations", "error", err)
				log.Fatalf("Failed to apply migrations: %v", err)
			}
		}
		pg := postgres.NewStore(db, postgres.WithLockTimeout(cfg.LockTimeout()))
		store, catalog = pg, pg
		pinger = db
	}

	// Initialize Services
	opts := []service.Option{
		service.WithDefaultCapacity(cfg.DefaultCapacity()),
		service.WithHoldSeconds(cfg.Reservation.DefaultHoldSeconds, cfg.Reservation.MaxHoldSeconds),
		service.WithMaxNights(cfg.Reservation.MaxNights),
		service.WithPageSize(cfg.Reservation.DefaultPageSize, cfg.Reservation.MaxPageSize),
	}
	holdSvc := service.NewHoldService(store, opts...)
	lifecycleSvc := service.NewLifecycleService(store, opts...)
	querySvc := service.NewQueryService(store, store, opts...)
	inventorySvc := service.NewInventoryService(store, opts...)

	if *seedPath != "" {
		data, err := seed.Load(*seedPath)
		if err != nil {
			log.Fatalf("Failed to read seed file: %v", err)
		}
		if err := seed.Apply(context.Background(), catalog, inventorySvc, data); err != nil {
			logger.Error("Failed to seed data", "error", err)
			log.Fatalf("Failed to seed data: %v", err)
		}
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())

	// Set up HTTP server
	handler := httpapi.NewHandler(httpapi.Services{
		Hold:      holdSvc,
		Lifecycle: lifecycleSvc,
		Query:     querySvc,
		Inventory: inventorySvc,
	}, pinger)
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(handler, tokenManager),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// Set up gRPC server
	var grpcServer *grpc.Server
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			log.Fatalf("Failed to listen: %v", err)
		}

		authInterceptor := interceptor.NewAuthInterceptor(tokenManager)
		grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(authInterceptor.Unary()),
		)
		grpcapi.RegisterReservationServiceServer(grpcServer, grpcapi.NewReservationHandler(holdSvc, lifecycleSvc, querySvc))
		healthpb.RegisterHealthServer(grpcServer, health.NewServer())

		// Register reflection service for grpcurl
		reflection.Register(grpcServer)

		go func() {
			logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
				log.Fatalf("Failed to serve gRPC: %v", err)
			}
		}()
	}

	// Expired holds are swept in-process unless a separate cronjob owns them
	var cronScheduler *scheduler.Scheduler
	if cfg.Reaper.Embedded {
		jobRunner := jobs.NewJobRunner(store, lifecycleSvc, cfg, clock.NewSystem())
		cronScheduler, err = scheduler.NewScheduler(jobRunner)
		if err != nil {
			logger.Error("Failed to create scheduler", "error", err)
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		cronScheduler.Start()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down...")
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

func openDatabase(cfg *config.Config) *sql.DB {
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")
	return db
}
