package handlers

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"expense-tracker-go-be/middleware"
	"expense-tracker-go-be/models"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TransactionRequest is the payload for creating or updating a transaction.
type TransactionRequest struct {
	CategoryID uint    `json:"category_id"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note"`
	Date       string  `json:"date"`
}

// TransactionRow is a transaction joined with its category display fields.
type TransactionRow struct {
	ID            uint      `json:"id"`
	Amount        float64   `json:"amount"`
	Note          string    `json:"note"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
	CategoryID    uint      `json:"category_id"`
	CategoryName  string    `json:"category_name"`
	CategoryIcon  string    `json:"category_icon"`
	Type          string    `json:"type"`
	CategoryColor string    `json:"category_color"`
}

const transactionColumns = `transactions.id, transactions.amount, transactions.note,
	transactions.date, transactions.created_at,
	categories.id AS category_id, categories.name AS category_name,
	categories.icon AS category_icon, categories.type AS type,
	categories.color AS category_color`

// transactionFilter builds the filtered query for the caller. Pagination is
// applied separately so the same predicate serves both rows and count.
func (h *Handler) transactionFilter(c *fiber.Ctx, userID uint) *gorm.DB {
	query := h.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ?", userID)

	if v, err := strconv.Atoi(c.Query("category_id")); err == nil && v > 0 {
		query = query.Where("transactions.category_id = ?", v)
	}
	if t := c.Query("type"); t == models.TypeIncome || t == models.TypeExpense {
		query = query.Where("categories.type = ?", t)
	}
	if from := c.Query("date_from"); from != "" {
		query = query.Where("transactions.date >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("transactions.date <= ?", to)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("transactions.note LIKE ?", "%"+search+"%")
	}
	return query
}

// ListTransactions returns the caller's transactions with optional filters,
// sorting, and pagination.
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	sort := c.Query("sort")
	if sort != "amount" && sort != "date" {
		sort = "date"
	}
	order := "DESC"
	if c.Query("order") == "asc" {
		order = "ASC"
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	var total int64
	if err := h.transactionFilter(c, userID).Count(&total).Error; err != nil {
		return h.serverError(c, "Failed to fetch transactions", err)
	}

	rows := []TransactionRow{}
	err := h.transactionFilter(c, userID).
		Select(transactionColumns).
		Order("transactions." + sort + " " + order).
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&rows).Error
	if err != nil {
		return h.serverError(c, "Failed to fetch transactions", err)
	}

	return ok(c, "Transactions fetched", fiber.Map{
		"transactions": rows,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func validateTransaction(req *TransactionRequest) (int, string) {
	req.Amount = math.Round(req.Amount*100) / 100
	if req.CategoryID == 0 || req.Amount <= 0 || req.Date == "" {
		return fiber.StatusBadRequest, "Category, amount, and date are required"
	}
	if !dateRe.MatchString(req.Date) {
		return fiber.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD"
	}
	return 0, ""
}

// CreateTransaction records a new income or expense entry.
func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	var req TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if code, msg := validateTransaction(&req); code != 0 {
		return fail(c, code, msg)
	}

	txn := models.Transaction{
		UserID:     middleware.UserID(c),
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Note:       req.Note,
		Date:       req.Date,
	}
	if err := h.db.Create(&txn).Error; err != nil {
		return h.serverError(c, "Failed to add transaction", err)
	}

	var row TransactionRow
	err := h.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Select(transactionColumns).
		Where("transactions.id = ?", txn.ID).
		Scan(&row).Error
	if err != nil {
		return h.serverError(c, "Failed to add transaction", err)
	}
	return created(c, "Transaction added successfully", row)
}

// UpdateTransaction modifies a transaction owned by the caller. Zero
// affected rows means wrong id or wrong owner and reports not-found.
func (h *Handler) UpdateTransaction(c *fiber.Ctx) error {
	id := c.QueryInt("id")
	if id <= 0 {
		return fail(c, fiber.StatusBadRequest, "Transaction ID is required")
	}

	var req TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if code, msg := validateTransaction(&req); code != 0 {
		return fail(c, code, msg)
	}

	res := h.db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", id, middleware.UserID(c)).
		Updates(map[string]any{
			"category_id": req.CategoryID,
			"amount":      req.Amount,
			"note":        req.Note,
			"date":        req.Date,
		})
	if res.Error != nil {
		return h.serverError(c, "Failed to update transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(c, fiber.StatusNotFound, "Transaction not found")
	}
	return ok(c, "Transaction updated successfully", fiber.Map{"id": id})
}

// DeleteTransaction removes a transaction owned by the caller.
func (h *Handler) DeleteTransaction(c *fiber.Ctx) error {
	id := c.QueryInt("id")
	if id <= 0 {
		return fail(c, fiber.StatusBadRequest, "Transaction ID is required")
	}

	res := h.db.Where("id = ? AND user_id = ?", id, middleware.UserID(c)).
		Delete(&models.Transaction{})
	if res.Error != nil {
		return h.serverError(c, "Failed to delete transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(c, fiber.StatusNotFound, "Transaction not found")
	}
	return ok(c, "Transaction deleted successfully", fiber.Map{"id": id})
}
