package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"expense-tracker-go-be/middleware"
	"expense-tracker-go-be/models"
)

// ProfileUpdateRequest is the payload for PUT /auth/profile. A password
// change requires the current password; a name-only update does not.
type ProfileUpdateRequest struct {
	Name            string `json:"name"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func profilePayload(u *models.User) fiber.Map {
	return fiber.Map{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt,
	}
}

// GetProfile returns the authenticated caller's account details.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	var user models.User
	err := h.db.First(&user, middleware.UserID(c)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		return h.serverError(c, "Failed to fetch profile", err)
	}
	return ok(c, "Profile fetched", profilePayload(&user))
}

// UpdateProfile changes the caller's display name and, optionally, password.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fail(c, fiber.StatusBadRequest, "Name cannot be empty")
	}

	var user models.User
	err := h.db.First(&user, middleware.UserID(c)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		return h.serverError(c, "Failed to update profile", err)
	}

	user.Name = req.Name
	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return fail(c, fiber.StatusBadRequest, "Current password is required to set a new password")
		}
		if user.CheckPassword(req.CurrentPassword) != nil {
			return fail(c, fiber.StatusUnauthorized, "Current password is incorrect")
		}
		if len(req.NewPassword) < 6 {
			return fail(c, fiber.StatusBadRequest, "New password must be at least 6 characters")
		}
		if err := user.SetPassword(req.NewPassword, h.cfg.BcryptCost); err != nil {
			return h.serverError(c, "Failed to update profile", err)
		}
	}

	if err := h.db.Save(&user).Error; err != nil {
		return h.serverError(c, "Failed to update profile", err)
	}
	return ok(c, "Profile updated successfully", profilePayload(&user))
}
