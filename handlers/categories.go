package handlers

import (
	"github.com/gofiber/fiber/v2"

	"expense-tracker-go-be/models"
)

// ListCategories returns the seeded category set, optionally filtered by
// type (Income or Expense).
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	query := h.db.Model(&models.Category{})

	if t := c.Query("type"); t == models.TypeIncome || t == models.TypeExpense {
		query = query.Where("type = ?", t)
	}

	var categories []models.Category
	if err := query.Order("type ASC, name ASC").Find(&categories).Error; err != nil {
		return h.serverError(c, "Failed to fetch categories", err)
	}
	return ok(c, "Categories fetched", categories)
}
