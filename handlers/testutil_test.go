package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"expense-tracker-go-be/auth"
	"expense-tracker-go-be/config"
	"expense-tracker-go-be/database"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:       "3000",
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		OTPExpiry:  15 * time.Minute,
		BcryptCost: bcrypt.MinCost,
		CORSOrigin: "*",
		Debug:      true,
	}
}

// newTestApp spins up the full route table against an in-memory database.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := testConfig()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	app := fiber.New()
	RegisterRoutes(app, New(db, tokens, cfg), tokens)
	return app, db
}

// doJSON performs a request against the app and decodes the envelope.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(raw, &envelope), "body: %s", raw)
	return resp.StatusCode, envelope
}

// registerUser creates an account and returns its token and id.
func registerUser(t *testing.T, app *fiber.App, name, email, password string) (string, uint) {
	t.Helper()

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, status)

	data := envelope["data"].(map[string]any)
	token := data["token"].(string)
	user := data["user"].(map[string]any)
	return token, uint(user["id"].(float64))
}

func data(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	d, okCast := envelope["data"].(map[string]any)
	require.True(t, okCast, "expected object data, got %v", envelope["data"])
	return d
}

func dataList(t *testing.T, envelope map[string]any) []any {
	t.Helper()
	d, okCast := envelope["data"].([]any)
	require.True(t, okCast, "expected array data, got %v", envelope["data"])
	return d
}
