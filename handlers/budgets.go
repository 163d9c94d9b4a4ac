package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"

	"expense-tracker-go-be/middleware"
	"expense-tracker-go-be/models"
)

// BudgetRequest is the payload for creating or updating a budget.
type BudgetRequest struct {
	CategoryID uint    `json:"category_id"`
	Amount     float64 `json:"amount"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
}

// BudgetRow is a budget joined with its category display fields.
type BudgetRow struct {
	ID         uint    `json:"id"`
	Amount     float64 `json:"amount"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	CategoryID uint    `json:"category_id"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
}

func validBudget(req *BudgetRequest) bool {
	return req.CategoryID > 0 && req.Amount > 0 &&
		req.Month >= 1 && req.Month <= 12 && req.Year >= 2000
}

// ListBudgets returns the caller's budgets for the current month.
func (h *Handler) ListBudgets(c *fiber.Ctx) error {
	now := time.Now()

	rows := []BudgetRow{}
	err := h.db.Model(&models.Budget{}).
		Joins("JOIN categories ON categories.id = budgets.category_id").
		Select(`budgets.id, budgets.amount, budgets.month, budgets.year,
			categories.id AS category_id, categories.name, categories.icon, categories.color`).
		Where("budgets.user_id = ? AND budgets.month = ? AND budgets.year = ?",
			middleware.UserID(c), int(now.Month()), now.Year()).
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return h.serverError(c, "Failed to fetch budgets", err)
	}
	return ok(c, "Budgets fetched", rows)
}

// CreateBudget sets a budget for (category, month, year). Resubmitting the
// same key updates the amount in place rather than adding a row.
func (h *Handler) CreateBudget(c *fiber.Ctx) error {
	var req BudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !validBudget(&req) {
		return fail(c, fiber.StatusBadRequest, "Invalid budget data")
	}

	userID := middleware.UserID(c)
	budget := models.Budget{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Month:      req.Month,
		Year:       req.Year,
	}
	err := h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "category_id"}, {Name: "month"}, {Name: "year"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&budget).Error
	if err != nil {
		return h.serverError(c, "Failed to save budget", err)
	}

	// On the conflict path the id of the existing row is what counts.
	var saved models.Budget
	err = h.db.Where("user_id = ? AND category_id = ? AND month = ? AND year = ?",
		userID, req.CategoryID, req.Month, req.Year).First(&saved).Error
	if err != nil {
		return h.serverError(c, "Failed to save budget", err)
	}
	return created(c, "Budget saved", fiber.Map{"id": saved.ID})
}

// UpdateBudget modifies a budget owned by the caller.
func (h *Handler) UpdateBudget(c *fiber.Ctx) error {
	id := c.QueryInt("id")
	if id <= 0 {
		return fail(c, fiber.StatusBadRequest, "Budget ID required")
	}

	var req BudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !validBudget(&req) {
		return fail(c, fiber.StatusBadRequest, "Invalid budget data")
	}

	res := h.db.Model(&models.Budget{}).
		Where("id = ? AND user_id = ?", id, middleware.UserID(c)).
		Updates(map[string]any{
			"category_id": req.CategoryID,
			"amount":      req.Amount,
			"month":       req.Month,
			"year":        req.Year,
		})
	if res.Error != nil {
		return h.serverError(c, "Failed to update budget", res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(c, fiber.StatusNotFound, "Budget not found")
	}
	return ok(c, "Budget updated", fiber.Map{"id": id})
}

// DeleteBudget removes a budget owned by the caller.
func (h *Handler) DeleteBudget(c *fiber.Ctx) error {
	id := c.QueryInt("id")
	if id <= 0 {
		return fail(c, fiber.StatusBadRequest, "Budget ID required")
	}

	res := h.db.Where("id = ? AND user_id = ?", id, middleware.UserID(c)).
		Delete(&models.Budget{})
	if res.Error != nil {
		return h.serverError(c, "Failed to delete budget", res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(c, fiber.StatusNotFound, "Budget not found")
	}
	return ok(c, "Budget deleted", fiber.Map{"id": id})
}
