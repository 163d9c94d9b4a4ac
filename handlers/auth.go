package handlers

import (
	"crypto/rand"
	"errors"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"expense-tracker-go-be/models"
)

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotRequest is the payload for POST /auth/forgot.
type ForgotRequest struct {
	Email string `json:"email"`
}

// ResetRequest is the payload for PUT /auth/forgot.
type ResetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func userSummary(u *models.User) fiber.Map {
	return fiber.Map{"id": u.ID, "name": u.Name, "email": u.Email}
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Register creates a new account and signs the caller in.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Name, email, and password are required")
	}
	if !validEmail(req.Email) {
		return fail(c, fiber.StatusBadRequest, "Invalid email format")
	}
	if len(req.Password) < 6 {
		return fail(c, fiber.StatusBadRequest, "Password must be at least 6 characters")
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return h.serverError(c, "Registration failed. Please try again.", err)
	}
	if count > 0 {
		return fail(c, fiber.StatusConflict, "An account with this email already exists")
	}

	user := models.User{Name: req.Name, Email: req.Email}
	if err := user.SetPassword(req.Password, h.cfg.BcryptCost); err != nil {
		return h.serverError(c, "Registration failed. Please try again.", err)
	}
	if err := h.db.Create(&user).Error; err != nil {
		return h.serverError(c, "Registration failed. Please try again.", err)
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return h.serverError(c, "Registration failed. Please try again.", err)
	}
	return created(c, "Registration successful", fiber.Map{
		"token": token,
		"user":  userSummary(&user),
	})
}

// Login authenticates by email and password. Unknown email and wrong
// password produce identical responses.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)

	if req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Email and password are required")
	}

	var user models.User
	err := h.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return h.serverError(c, "Login failed. Please try again.", err)
	}
	if user.CheckPassword(req.Password) != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return h.serverError(c, "Login failed. Please try again.", err)
	}
	return ok(c, "Login successful", fiber.Map{
		"token": token,
		"user":  userSummary(&user),
	})
}

// generateOTP returns a zero-padded numeric code of the given length.
func generateOTP(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte(n.Int64()) + '0'
	}
	return string(code), nil
}

// ForgotPassword handles the OTP request step. The response is identical
// whether or not the account exists, to prevent enumeration.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)

	if req.Email == "" || !validEmail(req.Email) {
		return fail(c, fiber.StatusBadRequest, "Valid email is required")
	}

	const sentMessage = "If that email exists, an OTP has been sent."

	var user models.User
	err := h.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ok(c, sentMessage, nil)
		}
		return h.serverError(c, "Failed to process request", err)
	}

	otp, err := generateOTP(6)
	if err != nil {
		return h.serverError(c, "Failed to process request", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), h.cfg.BcryptCost)
	if err != nil {
		return h.serverError(c, "Failed to process request", err)
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(h.cfg.OTPExpiry),
		Consumed:  false,
		CreatedAt: time.Now(),
	}
	// One pending code per user: a new request overwrites the old one.
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "consumed", "created_at"}),
	}).Create(&reset).Error
	if err != nil {
		return h.serverError(c, "Failed to process request", err)
	}

	// OTP delivery is out of band; the code is only surfaced in debug mode.
	if h.cfg.Debug {
		return ok(c, sentMessage, fiber.Map{
			"expires_in": int(h.cfg.OTPExpiry.Seconds()),
			"dev_otp":    otp,
		})
	}
	return ok(c, sentMessage, nil)
}

var (
	errResetInvalid = errors.New("invalid or expired OTP")
	errResetCode    = errors.New("incorrect OTP")
	errResetExpired = errors.New("OTP has expired")
)

// ResetPassword handles the OTP consume step. Verify-then-clear runs inside
// a transaction with an atomic consume so a code can never succeed twice.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)

	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		return fail(c, fiber.StatusBadRequest, "Email, OTP, and new password are all required")
	}
	if len(req.NewPassword) < 6 {
		return fail(c, fiber.StatusBadRequest, "Password must be at least 6 characters")
	}

	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("email = ?", req.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errResetInvalid
			}
			return err
		}

		var reset models.PasswordReset
		err := tx.Where("user_id = ? AND consumed = ?", user.ID, false).First(&reset).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errResetInvalid
			}
			return err
		}

		if reset.CheckCode(req.OTP) != nil {
			return errResetCode
		}
		if time.Now().After(reset.ExpiresAt) {
			return errResetExpired
		}

		// Consume atomically: a concurrent reset that got here first wins
		// and this one fails.
		res := tx.Model(&models.PasswordReset{}).
			Where("id = ? AND consumed = ?", reset.ID, false).
			Update("consumed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errResetInvalid
		}

		if err := user.SetPassword(req.NewPassword, h.cfg.BcryptCost); err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("password_hash", user.PasswordHash).Error
	})

	switch {
	case txErr == nil:
		return ok(c, "Password reset successfully. Please sign in.", nil)
	case errors.Is(txErr, errResetInvalid):
		return fail(c, fiber.StatusBadRequest, "Invalid or expired OTP")
	case errors.Is(txErr, errResetCode):
		return fail(c, fiber.StatusBadRequest, "Incorrect OTP")
	case errors.Is(txErr, errResetExpired):
		return fail(c, fiber.StatusBadRequest, "OTP has expired. Please request a new one.")
	default:
		return h.serverError(c, "Failed to reset password", txErr)
	}
}
