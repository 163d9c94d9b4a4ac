// Package handlers contains the HTTP endpoint implementations. Every
// response goes through the uniform {success, message, data} envelope.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"expense-tracker-go-be/auth"
	"expense-tracker-go-be/config"
)

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	db     *gorm.DB
	tokens *auth.TokenService
	cfg    *config.Config
}

// New builds a Handler around the database, token service, and config.
func New(db *gorm.DB, tokens *auth.TokenService, cfg *config.Config) *Handler {
	return &Handler{db: db, tokens: tokens, cfg: cfg}
}

func respond(c *fiber.Ctx, code int, success bool, message string, data any) error {
	body := fiber.Map{"success": success, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.Status(code).JSON(body)
}

func ok(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusOK, true, message, data)
}

func created(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusCreated, true, message, data)
}

func fail(c *fiber.Ctx, code int, message string) error {
	return respond(c, code, false, message, nil)
}

// serverError sends a 500. The diagnostic is only exposed in debug mode.
func (h *Handler) serverError(c *fiber.Ctx, message string, err error) error {
	if h.cfg.Debug && err != nil {
		return fail(c, fiber.StatusInternalServerError, message+": "+err.Error())
	}
	return fail(c, fiber.StatusInternalServerError, message)
}

// MethodNotAllowed answers unsupported verbs on a known route.
func MethodNotAllowed(c *fiber.Ctx) error {
	return fail(c, fiber.StatusMethodNotAllowed, "Method not allowed")
}
