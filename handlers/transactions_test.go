package handlers

import (
	"fmt"
	"math"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Seeded category ids: 1 = Food & Dining (Expense), 9 = Salary (Income).
const (
	expenseCategory = 1
	incomeCategory  = 9
)

func createTxn(t *testing.T, app *fiber.App, token string, categoryID uint, amount float64, note, date string) uint {
	t.Helper()
	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/transactions", token, fiber.Map{
		"category_id": categoryID, "amount": amount, "note": note, "date": date,
	})
	require.Equal(t, http.StatusCreated, status, "message: %v", envelope["message"])
	return uint(data(t, envelope)["id"].(float64))
}

func TestCreateTransaction(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/transactions", token, fiber.Map{
		"category_id": expenseCategory, "amount": 42.50, "note": "groceries", "date": "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, status)

	d := data(t, envelope)
	assert.Equal(t, 42.5, d["amount"])
	assert.Equal(t, "groceries", d["note"])
	assert.Equal(t, "2025-03-01", d["date"])
	assert.Equal(t, "Food & Dining", d["category_name"])
	assert.Equal(t, "Expense", d["type"])
}

func TestCreateTransactionRoundsAmount(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/transactions", token, fiber.Map{
		"category_id": expenseCategory, "amount": 10.999, "date": "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 11.0, data(t, envelope)["amount"])
}

func TestCreateTransactionValidation(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	cases := []struct {
		name    string
		body    fiber.Map
		message string
	}{
		{"no category", fiber.Map{"amount": 10.0, "date": "2025-03-01"}, "Category, amount, and date are required"},
		{"zero amount", fiber.Map{"category_id": 1, "amount": 0, "date": "2025-03-01"}, "Category, amount, and date are required"},
		{"negative amount", fiber.Map{"category_id": 1, "amount": -5.0, "date": "2025-03-01"}, "Category, amount, and date are required"},
		{"no date", fiber.Map{"category_id": 1, "amount": 10.0}, "Category, amount, and date are required"},
		{"bad date", fiber.Map{"category_id": 1, "amount": 10.0, "date": "01-03-2025"}, "Invalid date format. Use YYYY-MM-DD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/transactions", token, tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tc.message, envelope["message"])
		})
	}
}

func TestListTransactionsFilters(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	createTxn(t, app, token, expenseCategory, 20, "lunch", "2025-03-01")
	createTxn(t, app, token, expenseCategory, 35, "dinner out", "2025-03-10")
	createTxn(t, app, token, incomeCategory, 1000, "march pay", "2025-03-25")
	createTxn(t, app, token, expenseCategory, 15, "lunch again", "2025-04-02")

	list := func(query string) []any {
		status, envelope := doJSON(t, app, http.MethodGet, "/api/v1/transactions"+query, token, nil)
		require.Equal(t, http.StatusOK, status)
		return data(t, envelope)["transactions"].([]any)
	}

	assert.Len(t, list(""), 4)
	assert.Len(t, list("?type=Income"), 1)
	assert.Len(t, list("?category_id=1"), 3)
	assert.Len(t, list("?date_from=2025-03-05&date_to=2025-03-31"), 2)
	assert.Len(t, list("?search=lunch"), 2)

	// Default sort: date descending
	rows := list("")
	assert.Equal(t, "2025-04-02", rows[0].(map[string]any)["date"])

	// Amount ascending
	rows = list("?sort=amount&order=asc")
	assert.Equal(t, 15.0, rows[0].(map[string]any)["amount"])
}

func TestListTransactionsScopedToOwner(t *testing.T) {
	app, _ := newTestApp(t)
	tokenA, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")
	tokenB, _ := registerUser(t, app, "Bob", "b@x.com", "secret2")

	createTxn(t, app, tokenA, expenseCategory, 20, "alice lunch", "2025-03-01")

	status, envelope := doJSON(t, app, http.MethodGet, "/api/v1/transactions", tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, data(t, envelope)["transactions"])
}

// Sum of items across all pages equals total, and pages == ceil(total/limit).
func TestPaginationInvariant(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	const total = 7
	for i := 1; i <= total; i++ {
		createTxn(t, app, token, expenseCategory, float64(i), "entry", fmt.Sprintf("2025-03-%02d", i))
	}

	const limit = 3
	seen := 0
	var pages float64
	for page := 1; page <= 3; page++ {
		status, envelope := doJSON(t, app, http.MethodGet,
			fmt.Sprintf("/api/v1/transactions?page=%d&limit=%d", page, limit), token, nil)
		require.Equal(t, http.StatusOK, status)

		d := data(t, envelope)
		seen += len(d["transactions"].([]any))
		pagination := d["pagination"].(map[string]any)
		assert.Equal(t, float64(total), pagination["total"])
		assert.Equal(t, float64(limit), pagination["limit"])
		pages = pagination["pages"].(float64)
	}
	assert.Equal(t, total, seen)
	assert.Equal(t, math.Ceil(float64(total)/float64(limit)), pages)
}

func TestPaginationClamping(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")
	createTxn(t, app, token, expenseCategory, 10, "x", "2025-03-01")

	status, envelope := doJSON(t, app, http.MethodGet, "/api/v1/transactions?page=0&limit=999", token, nil)
	require.Equal(t, http.StatusOK, status)
	pagination := data(t, envelope)["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(100), pagination["limit"])
}

func TestUpdateTransaction(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")
	id := createTxn(t, app, token, expenseCategory, 20, "lunch", "2025-03-01")

	status, envelope := doJSON(t, app, http.MethodPut,
		fmt.Sprintf("/api/v1/transactions?id=%d", id), token, fiber.Map{
			"category_id": expenseCategory, "amount": 25.0, "note": "expensive lunch", "date": "2025-03-01",
		})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Transaction updated successfully", envelope["message"])

	_, envelope = doJSON(t, app, http.MethodGet, "/api/v1/transactions", token, nil)
	row := data(t, envelope)["transactions"].([]any)[0].(map[string]any)
	assert.Equal(t, 25.0, row["amount"])
	assert.Equal(t, "expensive lunch", row["note"])
}

func TestUpdateTransactionWrongOwnerIsNotFound(t *testing.T) {
	app, _ := newTestApp(t)
	tokenA, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")
	tokenB, _ := registerUser(t, app, "Bob", "b@x.com", "secret2")
	id := createTxn(t, app, tokenA, expenseCategory, 20, "lunch", "2025-03-01")

	status, envelope := doJSON(t, app, http.MethodPut,
		fmt.Sprintf("/api/v1/transactions?id=%d", id), tokenB, fiber.Map{
			"category_id": expenseCategory, "amount": 1.0, "date": "2025-03-01",
		})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Transaction not found", envelope["message"])
}

func TestDeleteTransaction(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")
	id := createTxn(t, app, token, expenseCategory, 20, "lunch", "2025-03-01")

	status, _ := doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/api/v1/transactions?id=%d", id), token, nil)
	assert.Equal(t, http.StatusOK, status)

	// Gone now
	status, envelope := doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/api/v1/transactions?id=%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Transaction not found", envelope["message"])
}

func TestDeleteTransactionRequiresID(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	status, envelope := doJSON(t, app, http.MethodDelete, "/api/v1/transactions", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Transaction ID is required", envelope["message"])
}
