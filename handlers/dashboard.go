package handlers

import (
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"expense-tracker-go-be/middleware"
	"expense-tracker-go-be/models"
)

// Dashboard dispatches to the aggregate endpoints by the endpoint query param.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	switch c.Query("endpoint", "summary") {
	case "summary":
		return h.dashboardSummary(c, userID)
	case "by-category":
		return h.dashboardByCategory(c, userID)
	case "monthly-trend":
		return h.dashboardMonthlyTrend(c, userID)
	case "top-expenses":
		return h.dashboardTopExpenses(c, userID)
	case "budget-status":
		return h.dashboardBudgetStatus(c, userID)
	default:
		return fail(c, fiber.StatusNotFound, "Unknown dashboard endpoint")
	}
}

// window is the inclusive date range an aggregate is computed over.
type window struct {
	From  string
	To    string
	Label string
}

// reportWindow resolves the reporting window: an explicit date_from/date_to
// pair when both are well-formed, otherwise the current calendar month.
func reportWindow(c *fiber.Ctx) window {
	from, to := c.Query("date_from"), c.Query("date_to")
	if dateRe.MatchString(from) && dateRe.MatchString(to) && from <= to {
		return window{From: from, To: to, Label: from + " to " + to}
	}
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return window{
		From:  start.Format("2006-01-02"),
		To:    end.Format("2006-01-02"),
		Label: start.Format("January 2006"),
	}
}

// previous returns the immediately preceding window of equal length.
func (w window) previous() window {
	from, errF := time.Parse("2006-01-02", w.From)
	to, errT := time.Parse("2006-01-02", w.To)
	if errF != nil || errT != nil {
		return window{}
	}
	days := int(to.Sub(from).Hours()/24) + 1
	prevTo := from.AddDate(0, 0, -1)
	prevFrom := prevTo.AddDate(0, 0, -(days - 1))
	return window{From: prevFrom.Format("2006-01-02"), To: prevTo.Format("2006-01-02")}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

type periodTotals struct {
	TotalIncome      float64
	TotalExpense     float64
	TransactionCount int64
}

func (h *Handler) windowTotals(userID uint, w window) (periodTotals, error) {
	var totals periodTotals
	err := h.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Select(`COALESCE(SUM(CASE WHEN categories.type = 'Income' THEN transactions.amount ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN categories.type = 'Expense' THEN transactions.amount ELSE 0 END), 0) AS total_expense,
			COUNT(*) AS transaction_count`).
		Where("transactions.user_id = ? AND transactions.date BETWEEN ? AND ?", userID, w.From, w.To).
		Scan(&totals).Error
	return totals, err
}

// insight classifies window spending against the preceding period.
func insight(current, previous periodTotals) fiber.Map {
	if current.TotalExpense == 0 && current.TotalIncome > 0 {
		return fiber.Map{
			"status":  "success",
			"message": "No expenses this period while income came in. Great savings!",
		}
	}
	if previous.TotalExpense > 0 {
		change := (current.TotalExpense - previous.TotalExpense) / previous.TotalExpense * 100
		if change > 10 {
			return fiber.Map{
				"status":  "warning",
				"message": fmt.Sprintf("Spending is up %.1f%% compared to the previous period", change),
			}
		}
		if change < -10 {
			return fiber.Map{
				"status":  "success",
				"message": fmt.Sprintf("Spending is down %.1f%% compared to the previous period", -change),
			}
		}
	}
	return fiber.Map{"status": "neutral", "message": "Spending is steady compared to the previous period"}
}

func (h *Handler) dashboardSummary(c *fiber.Ctx, userID uint) error {
	w := reportWindow(c)

	current, err := h.windowTotals(userID, w)
	if err != nil {
		return h.serverError(c, "Failed to fetch summary", err)
	}
	previous, err := h.windowTotals(userID, w.previous())
	if err != nil {
		return h.serverError(c, "Failed to fetch summary", err)
	}

	var balance struct{ Balance float64 }
	err = h.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Select(`COALESCE(SUM(CASE WHEN categories.type = 'Income' THEN transactions.amount ELSE -transactions.amount END), 0) AS balance`).
		Where("transactions.user_id = ?", userID).
		Scan(&balance).Error
	if err != nil {
		return h.serverError(c, "Failed to fetch summary", err)
	}

	return ok(c, "Summary fetched", fiber.Map{
		"period":            w.Label,
		"date_from":         w.From,
		"date_to":           w.To,
		"total_income":      round2(current.TotalIncome),
		"total_expense":     round2(current.TotalExpense),
		"net":               round2(current.TotalIncome - current.TotalExpense),
		"all_time_balance":  round2(balance.Balance),
		"transaction_count": current.TransactionCount,
		"insight":           insight(current, previous),
	})
}

type categoryTotal struct {
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
	Type       string  `json:"type"`
	Total      float64 `json:"total"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

func (h *Handler) categoryTotalsQuery(userID uint, catType string, w window) *gorm.DB {
	return h.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND categories.type = ? AND transactions.date BETWEEN ? AND ?",
			userID, catType, w.From, w.To).
		Group("categories.id, categories.name, categories.icon, categories.color, categories.type").
		Order("total DESC")
}

func (h *Handler) dashboardByCategory(c *fiber.Ctx, userID uint) error {
	w := reportWindow(c)
	catType := c.Query("type", models.TypeExpense)
	if catType != models.TypeIncome && catType != models.TypeExpense {
		catType = models.TypeExpense
	}

	rows := []categoryTotal{}
	err := h.categoryTotalsQuery(userID, catType, w).
		Select(`categories.name, categories.icon, categories.color, categories.type,
			SUM(transactions.amount) AS total, COUNT(transactions.id) AS count`).
		Scan(&rows).Error
	if err != nil {
		return h.serverError(c, "Failed to fetch category breakdown", err)
	}

	var grandTotal float64
	for _, row := range rows {
		grandTotal += row.Total
	}
	for i := range rows {
		if grandTotal > 0 {
			rows[i].Percentage = round1(rows[i].Total / grandTotal * 100)
		}
	}

	return ok(c, "Category breakdown fetched", fiber.Map{
		"categories":  rows,
		"grand_total": round2(grandTotal),
	})
}

func (h *Handler) dashboardMonthlyTrend(c *fiber.Ctx, userID uint) error {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)

	type trendRow struct {
		MonthKey string  `json:"month_key"`
		Income   float64 `json:"income"`
		Expense  float64 `json:"expense"`
	}
	rows := []trendRow{}
	err := h.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Select(`substr(transactions.date, 1, 7) AS month_key,
			COALESCE(SUM(CASE WHEN categories.type = 'Income' THEN transactions.amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN categories.type = 'Expense' THEN transactions.amount ELSE 0 END), 0) AS expense`).
		Where("transactions.user_id = ? AND transactions.date >= ?", userID, start.Format("2006-01-02")).
		Group("month_key").
		Order("month_key ASC").
		Scan(&rows).Error
	if err != nil {
		return h.serverError(c, "Failed to fetch monthly trend", err)
	}

	months := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		label := row.MonthKey
		if t, err := time.Parse("2006-01", row.MonthKey); err == nil {
			label = t.Format("Jan 2006")
		}
		months = append(months, fiber.Map{
			"month_key":   row.MonthKey,
			"month_label": label,
			"income":      round2(row.Income),
			"expense":     round2(row.Expense),
		})
	}
	return ok(c, "Monthly trend fetched", months)
}

func (h *Handler) dashboardTopExpenses(c *fiber.Ctx, userID uint) error {
	w := reportWindow(c)

	type topRow struct {
		Name  string  `json:"name"`
		Icon  string  `json:"icon"`
		Color string  `json:"color"`
		Total float64 `json:"total"`
	}
	rows := []topRow{}
	err := h.categoryTotalsQuery(userID, models.TypeExpense, w).
		Select(`categories.name, categories.icon, categories.color, SUM(transactions.amount) AS total`).
		Limit(5).
		Scan(&rows).Error
	if err != nil {
		return h.serverError(c, "Failed to fetch top expenses", err)
	}
	return ok(c, "Top expenses fetched", rows)
}

func (h *Handler) dashboardBudgetStatus(c *fiber.Ctx, userID uint) error {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	type statusRow struct {
		ID         uint    `json:"id"`
		CategoryID uint    `json:"category_id"`
		Name       string  `json:"name"`
		Icon       string  `json:"icon"`
		Color      string  `json:"color"`
		Budget     float64 `json:"budget"`
		Month      int     `json:"month"`
		Year       int     `json:"year"`
		Spent      float64 `json:"spent"`
		Remaining  float64 `json:"remaining"`
		Percent    float64 `json:"percent"`
		Warning    bool    `json:"warning"`
	}
	rows := []statusRow{}
	err := h.db.Model(&models.Budget{}).
		Joins("JOIN categories ON categories.id = budgets.category_id").
		Joins(`LEFT JOIN transactions ON transactions.category_id = budgets.category_id
			AND transactions.user_id = budgets.user_id
			AND transactions.date BETWEEN ? AND ?`,
			monthStart.Format("2006-01-02"), monthEnd.Format("2006-01-02")).
		Select(`budgets.id, budgets.category_id, categories.name, categories.icon, categories.color,
			budgets.amount AS budget, budgets.month, budgets.year,
			COALESCE(SUM(transactions.amount), 0) AS spent`).
		Where("budgets.user_id = ? AND budgets.month = ? AND budgets.year = ?",
			userID, int(now.Month()), now.Year()).
		Group("budgets.id, budgets.category_id, categories.name, categories.icon, categories.color, budgets.amount, budgets.month, budgets.year").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return h.serverError(c, "Failed to fetch budget status", err)
	}

	for i := range rows {
		rows[i].Remaining = round2(rows[i].Budget - rows[i].Spent)
		if rows[i].Budget > 0 {
			rows[i].Percent = round1(rows[i].Spent / rows[i].Budget * 100)
		}
		rows[i].Warning = rows[i].Percent >= 80
	}
	return ok(c, "Budget status fetched", rows)
}
