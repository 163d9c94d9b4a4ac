package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Category types. Categories are seeded at migration time and read-only
// from the API surface.
const (
	TypeIncome  = "Income"
	TypeExpense = "Expense"
)

// User represents a registered account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// SetPassword hashes the plaintext password with bcrypt and stores the hash.
func (u *User) SetPassword(plain string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (u *User) CheckPassword(plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain))
}

// Category is a seeded income/expense category.
type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:50;not null" json:"name"`
	Icon  string `gorm:"size:10" json:"icon"`
	Type  string `gorm:"size:10;not null;index" json:"type"`
	Color string `gorm:"size:10" json:"color"`
}

// Transaction is a single income or expense entry. Date carries no time
// component and is stored as YYYY-MM-DD text so range filters and month
// grouping behave the same on every backend.
type Transaction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Amount     float64   `gorm:"not null" json:"amount"`
	Note       string    `gorm:"size:255" json:"note"`
	Date       string    `gorm:"size:10;not null;index" json:"date"`
	CreatedAt  time.Time `json:"created_at"`
}

// Budget is a monthly spending cap for one category. The composite unique
// index makes resubmission for the same key an upsert, never a duplicate.
type Budget struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	UserID     uint    `gorm:"not null;uniqueIndex:idx_budget_key" json:"user_id"`
	CategoryID uint    `gorm:"not null;uniqueIndex:idx_budget_key" json:"category_id"`
	Amount     float64 `gorm:"not null" json:"amount"`
	Month      int     `gorm:"not null;uniqueIndex:idx_budget_key" json:"month"`
	Year       int     `gorm:"not null;uniqueIndex:idx_budget_key" json:"year"`
}

// PasswordReset holds the single pending reset code for a user. Only the
// bcrypt hash of the OTP is stored; a new request overwrites the row and
// consumption is final.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"-"`
	CodeHash  string    `gorm:"size:255;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
	Consumed  bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"-"`
}

// CheckCode verifies a plaintext OTP against the stored hash.
func (p *PasswordReset) CheckCode(code string) error {
	return bcrypt.CompareHashAndPassword([]byte(p.CodeHash), []byte(code))
}
