package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/festipay/festipay/internal/middleware"
	"github.com/festipay/festipay/internal/models"
)

// NewRouter constructs the HTTP handler serving the wallet API.
//
// Route visibility follows the role policy: unauthenticated actors reach
// only registration, login and reset requests; staff roles reach the
// point of sale and card management; per-card administrative detail,
// product management and statistics are super-admin only. The same
// policy is enforced a second time inside the gated service operations.
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON bodies
//  2. WithRequestLogging(logger)           — logs each request
//  3. TokenAuth(resolver)                  — gated groups only
func NewRouter(
	authHandler *AuthHandler,
	ledgerHandler *LedgerHandler,
	statsHandler *StatsHandler,
	resolver middleware.ActorResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	superAdmin := middleware.RequireRole(models.RoleSuperAdmin)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/password-reset", authHandler.RequestReset)

		// Protected group: requires a live session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(resolver))

			r.Post("/logout", authHandler.Logout)
			r.Get("/products", ledgerHandler.ListProducts)
			r.Get("/cards/{id}", ledgerHandler.GetCard)
			r.Get("/cards/{id}/transactions", ledgerHandler.Transactions)
			r.Post("/cards/{id}/link", ledgerHandler.Link)

			// Staff: point of sale, issuance, top-up, card table
			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Get("/cards", ledgerHandler.ListCards)
				r.Post("/cards", ledgerHandler.IssueCard)
				r.Post("/cards/{id}/topup", ledgerHandler.TopUp)
				r.Post("/cards/{id}/payment", ledgerHandler.Payment)
				r.Post("/users/{id}/password", authHandler.AdminReset)
			})

			// Super admin: card detail, products, statistics
			r.Group(func(r chi.Router) {
				r.Use(superAdmin)
				r.Post("/cards/{id}/correct", ledgerHandler.Correct)
				r.Post("/cards/{id}/status", ledgerHandler.Status)
				r.Post("/cards/transfer", ledgerHandler.Transfer)
				r.Get("/cards/{id}/owner", ledgerHandler.Owner)
				r.Get("/users", ledgerHandler.ListUsers)
				r.Post("/products", ledgerHandler.AddProduct)
				r.Delete("/products/{id}", ledgerHandler.DeleteProduct)
				r.Get("/stats/spending", statsHandler.Spending)
				r.Get("/stats/hourly", statsHandler.Hourly)
				r.Get("/stats/products", statsHandler.Products)
			})
		})
	})

	return r
}
