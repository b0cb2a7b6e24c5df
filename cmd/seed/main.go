package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"hotel-booking-backend/internal/config"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository/postgres"
	"hotel-booking-backend/internal/security"
	"hotel-booking-backend/internal/seed"
	"hotel-booking-backend/internal/service"
	"hotel-booking-backend/migrations"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	seedPath := flag.String("file", "config/seed.dev.yaml", "Path to seed data file")
	tokenUser := flag.Int64("token-user", 0, "Print an access token for this user id after seeding")
	admin := flag.Bool("admin", false, "Give the printed token the ADMIN role")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	data, err := seed.Load(*seedPath)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Connected to database", "host", cfg.Database.Host, "database", cfg.Database.Database)

	ctx := context.Background()
	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	store := postgres.NewStore(db, postgres.WithLockTimeout(cfg.LockTimeout()))
	inventorySvc := service.NewInventoryService(store, service.WithDefaultCapacity(cfg.DefaultCapacity()))
	if err := seed.Apply(ctx, store, inventorySvc, data); err != nil {
		log.Fatalf("Failed to populate data: %v", err)
	}

	if *tokenUser > 0 {
		var roles []string
		if *admin {
			roles = []string{config.RoleAdmin}
		}
		tokens := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
		token, err := tokens.GenerateAccessToken(*tokenUser, fmt.Sprintf("user%d@example.com", *tokenUser), roles)
		if err != nil {
			log.Fatalf("Failed to generate token: %v", err)
		}
		fmt.Println(token)
	}

	logger.Info("Seed data successfully populated")
}
