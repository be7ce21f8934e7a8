package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/motoqueiros/backend/internal/access"
	"github.com/motoqueiros/backend/internal/config"
	"github.com/motoqueiros/backend/internal/database"
	"github.com/motoqueiros/backend/internal/handlers"
	"github.com/motoqueiros/backend/internal/logger"
	mW "github.com/motoqueiros/backend/internal/middleware"
	"github.com/motoqueiros/backend/internal/services"
	"github.com/motoqueiros/backend/internal/store"
)

// App is the wired service graph.
type App struct {
	Router http.Handler
	Auth   *services.AuthService
}

// NewApp wires services and handlers over st. db may be nil when st has no
// connection to check.
func NewApp(cfg *config.Config, log *logger.Logger, st store.Store, blacklist *database.TokenBlacklist, db handlers.Pinger) (*App, error) {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.App.Timezone, err)
	}

	validator := services.NewValidationHelper()
	tokens := access.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.Expiry())

	authService := services.NewAuthService(st, st, tokens, blacklist, validator, log, cfg.Admin.BcryptCost)
	courierService := services.NewCourierService(st, validator, log, cfg.Admin.BcryptCost)
	ledgerService := services.NewLedgerService(st, services.NewReconciler(), validator, log)
	totalService := services.NewTotalService(st, validator, log)
	dashboardService := services.NewDashboardService(st, validator, loc)

	router := NewRouter(Deps{
		Log:            log,
		Policy:         access.DefaultPolicy(),
		Authenticator:  mW.NewAuthenticator(tokens, blacklist, log),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,

		Health:   handlers.NewHealthHandler(db, log),
		Auth:     handlers.NewAuthHandler(authService, log),
		Couriers: handlers.NewCourierHandler(courierService, log),
		Ledger:   handlers.NewLedgerHandler(ledgerService, log),
		Totals:   handlers.NewTotalHandler(totalService, dashboardService, log),
	})

	return &App{Router: router, Auth: authService}, nil
}
