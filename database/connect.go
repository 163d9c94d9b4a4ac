package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"expense-tracker-go-be/models"
)

// Connect opens the Postgres connection and runs migrations.
func Connect(dsn string) (*gorm.DB, error) {
	if !strings.Contains(dsn, "sslmode") {
		dsn += "?sslmode=require" // Fixes Supabase connection refusal
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Connected to database successfully")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs schema migrations and seeds the category table.
func Migrate(db *gorm.DB) error {
	log.Println("Running migrations...")
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Transaction{},
		&models.Budget{},
		&models.PasswordReset{},
	)
	if err != nil {
		return err
	}
	if err := seedCategories(db); err != nil {
		return err
	}
	log.Println("Database migrated successfully")
	return nil
}

// seedCategories inserts the default category set on first run. Categories
// are read-only from the API, so an already-populated table is left alone.
func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []models.Category{
		{Name: "Food & Dining", Icon: "🍔", Type: models.TypeExpense, Color: "#ef4444"},
		{Name: "Transport", Icon: "🚕", Type: models.TypeExpense, Color: "#f59e0b"},
		{Name: "Shopping", Icon: "🛍️", Type: models.TypeExpense, Color: "#8b5cf6"},
		{Name: "Bills & Utilities", Icon: "💡", Type: models.TypeExpense, Color: "#06b6d4"},
		{Name: "Entertainment", Icon: "🎬", Type: models.TypeExpense, Color: "#ec4899"},
		{Name: "Health", Icon: "💊", Type: models.TypeExpense, Color: "#10b981"},
		{Name: "Education", Icon: "📚", Type: models.TypeExpense, Color: "#6366f1"},
		{Name: "Other Expense", Icon: "📦", Type: models.TypeExpense, Color: "#64748b"},
		{Name: "Salary", Icon: "💰", Type: models.TypeIncome, Color: "#22c55e"},
		{Name: "Freelance", Icon: "💻", Type: models.TypeIncome, Color: "#14b8a6"},
		{Name: "Investment", Icon: "📈", Type: models.TypeIncome, Color: "#0ea5e9"},
		{Name: "Other Income", Icon: "🎁", Type: models.TypeIncome, Color: "#a3e635"},
	}
	return db.Create(&categories).Error
}
