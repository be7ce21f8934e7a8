package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/motoqueiros/backend/internal/config"
	"github.com/motoqueiros/backend/internal/database"
	"github.com/motoqueiros/backend/internal/handlers"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/server"
	"github.com/motoqueiros/backend/internal/store"
	"github.com/motoqueiros/backend/internal/store/memory"
)

// @title Motoqueiros Ledger API
// @version 1.0
// @description Daily courier ledger with derived totals
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var (
		st     store.Store
		pinger handlers.Pinger
	)
	switch cfg.Database.Driver {
	case "memory":
		logg.Warn("using in-memory store, data is lost on restart")
		st = memory.New()
	default:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			logg.Fatal("failed to connect to database", "error", err)
		}
		defer closeDB(db, logg)

		applied, err := database.Migrate(ctx, db)
		if err != nil {
			logg.Fatal("failed to migrate database", "error", err)
		}
		logg.Info("database ready", "migrations", applied)

		pgStore := database.NewStore(db, logg)
		st, pinger = pgStore, pgStore
	}

	redisClient := database.ConnectRedis(ctx, cfg.Redis, logg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	app, err := server.NewApp(cfg, logg, st, database.NewTokenBlacklist(redisClient), pinger)
	if err != nil {
		logg.Fatal("failed to build application", "error", err)
	}

	if _, err := app.Auth.EnsureAdmin(ctx, cfg.Admin.Login, cfg.Admin.Password); err != nil {
		logg.Fatal("failed to seed admin", "error", err)
	}

	if err := server.Run(ctx, server.New(cfg.Server, app.Router), logg); err != nil {
		logg.Fatal("server failed", "error", err)
	}
}

func closeDB(db *sql.DB, logg *logger.Logger) {
	if err := db.Close(); err != nil {
		logg.Error("failed to close database", "error", err)
	}
}
