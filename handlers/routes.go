package handlers

import (
	"github.com/gofiber/fiber/v2"

	"expense-tracker-go-be/auth"
	"expense-tracker-go-be/middleware"
)

// RegisterRoutes mounts every endpoint under /api/v1. Each route group ends
// with an All catch so unsupported verbs answer 405 through the envelope.
func RegisterRoutes(app *fiber.App, h *Handler, tokens *auth.TokenService) {
	api := app.Group("/api/v1")

	// Health Check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth (open)
	api.Post("/auth/register", h.Register)
	api.All("/auth/register", MethodNotAllowed)
	api.Post("/auth/login", h.Login)
	api.All("/auth/login", MethodNotAllowed)
	api.Post("/auth/forgot", h.ForgotPassword)
	api.Put("/auth/forgot", h.ResetPassword)
	api.All("/auth/forgot", MethodNotAllowed)

	// Everything below requires a valid bearer token
	protected := api.Group("", middleware.RequestGate(tokens))

	protected.Get("/auth/profile", h.GetProfile)
	protected.Put("/auth/profile", h.UpdateProfile)
	protected.All("/auth/profile", MethodNotAllowed)

	protected.Get("/categories", h.ListCategories)
	protected.All("/categories", MethodNotAllowed)

	protected.Get("/transactions", h.ListTransactions)
	protected.Post("/transactions", h.CreateTransaction)
	protected.Put("/transactions", h.UpdateTransaction)
	protected.Delete("/transactions", h.DeleteTransaction)
	protected.All("/transactions", MethodNotAllowed)

	protected.Get("/budgets", h.ListBudgets)
	protected.Post("/budgets", h.CreateBudget)
	protected.Put("/budgets", h.UpdateBudget)
	protected.Delete("/budgets", h.DeleteBudget)
	protected.All("/budgets", MethodNotAllowed)

	protected.Get("/dashboard", h.Dashboard)
	protected.All("/dashboard", MethodNotAllowed)

	protected.Get("/ai/insights", h.AIInsights)
	protected.All("/ai/insights", MethodNotAllowed)
}
