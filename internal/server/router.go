package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/motoqueiros/backend/docs"
	"github.com/motoqueiros/backend/internal/access"
	"github.com/motoqueiros/backend/internal/handlers"
	"github.com/motoqueiros/backend/internal/logger"
	mW "github.com/motoqueiros/backend/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Deps is everything the router mounts.
type Deps struct {
	Log            *logger.Logger
	Policy         access.Policy
	Authenticator  *mW.Authenticator
	AllowedOrigins []string
	RequestTimeout time.Duration

	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Couriers *handlers.CourierHandler
	Ledger   *handlers.LedgerHandler
	Totals   *handlers.TotalHandler
}

// NewRouter mounts every route at the root path. Protected routes carry the
// policy check for their operation.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mW.RequestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Timeout(d.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         86400,
	}))

	// Health check
	r.Get("/health", d.Health.Health)

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Public endpoints (no auth required)
	r.Post("/login", d.Auth.LoginAdmin)
	r.Post("/login-motoqueiro", d.Auth.LoginCourier)

	// Protected endpoints (auth required)
	r.Group(func(r chi.Router) {
		r.Use(d.Authenticator.AuthMiddleware)

		allow := func(op access.Operation) func(http.Handler) http.Handler {
			return mW.Authorize(d.Policy, op, d.Log)
		}

		r.With(allow(access.OpLogout)).Post("/logout", d.Auth.Logout)

		r.With(allow(access.OpCreateCourier)).Post("/motoqueiros", d.Couriers.Create)
		r.With(allow(access.OpListCouriers)).Get("/motoqueiros", d.Couriers.List)
		r.With(allow(access.OpDeleteCourier)).Delete("/motoqueiros/{id}", d.Couriers.Delete)

		r.With(allow(access.OpCreateEntry)).Post("/lancamentos", d.Ledger.Create)
		r.With(allow(access.OpListEntries)).Get("/lancamentos", d.Ledger.List)
		r.With(allow(access.OpGetEntry)).Get("/lancamentos/{id}", d.Ledger.Get)
		r.With(allow(access.OpUpdateEntry)).Put("/lancamentos/{id}", d.Ledger.Update)
		r.With(allow(access.OpDeleteEntry)).Delete("/lancamentos/{id}", d.Ledger.Delete)

		r.With(allow(access.OpListTotals)).Get("/totais", d.Totals.List)
		r.With(allow(access.OpDashboard)).Get("/totais/me", d.Totals.Dashboard)
		r.With(allow(access.OpPayTotal)).Put("/totais/{id}/pagar", d.Totals.Pay)
	})

	return r
}
