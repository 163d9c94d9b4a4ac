package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	app, _ := newTestApp(t)
	token, id := registerUser(t, app, "Alice", "a@x.com", "secret1")

	status, envelope := doJSON(t, app, http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, status)

	d := data(t, envelope)
	assert.Equal(t, float64(id), d["id"])
	assert.Equal(t, "Alice", d["name"])
	assert.Equal(t, "a@x.com", d["email"])
	assert.NotEmpty(t, d["created_at"])
}

func TestUpdateProfileNameOnly(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	// Name-only updates skip password verification entirely
	status, envelope := doJSON(t, app, http.MethodPut, "/api/v1/auth/profile", token, fiber.Map{
		"name": "Alicia",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alicia", data(t, envelope)["name"])

	// Old password still valid
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "a@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestUpdateProfileEmptyName(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	status, envelope := doJSON(t, app, http.MethodPut, "/api/v1/auth/profile", token, fiber.Map{
		"name": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Name cannot be empty", envelope["message"])
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	// Missing current password
	status, envelope := doJSON(t, app, http.MethodPut, "/api/v1/auth/profile", token, fiber.Map{
		"name": "Alice", "new_password": "newsecret",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Current password is required to set a new password", envelope["message"])

	// Wrong current password
	status, envelope = doJSON(t, app, http.MethodPut, "/api/v1/auth/profile", token, fiber.Map{
		"name": "Alice", "current_password": "wrong", "new_password": "newsecret",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Current password is incorrect", envelope["message"])

	// Too-short new password
	status, envelope = doJSON(t, app, http.MethodPut, "/api/v1/auth/profile", token, fiber.Map{
		"name": "Alice", "current_password": "secret1", "new_password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "New password must be at least 6 characters", envelope["message"])

	// Valid change
	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/auth/profile", token, fiber.Map{
		"name": "Alice", "current_password": "secret1", "new_password": "newsecret",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "a@x.com", "password": "newsecret",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestListCategories(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "Alice", "a@x.com", "secret1")

	status, envelope := doJSON(t, app, http.MethodGet, "/api/v1/categories", token, nil)
	require.Equal(t, http.StatusOK, status)
	all := dataList(t, envelope)
	assert.NotEmpty(t, all)

	status, envelope = doJSON(t, app, http.MethodGet, "/api/v1/categories?type=Income", token, nil)
	require.Equal(t, http.StatusOK, status)
	income := dataList(t, envelope)
	assert.NotEmpty(t, income)
	assert.Less(t, len(income), len(all))
	for _, raw := range income {
		cat := raw.(map[string]any)
		assert.Equal(t, "Income", cat["type"])
	}
}
