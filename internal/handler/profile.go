package handler

import (
	"errors"
	"net/http"
	"strings"

	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UpdateProfileReq changes the profile of the current user.
type UpdateProfileReq struct {
	FullName          string     `json:"full_name" binding:"max=128"`
	DefaultCurrencyID *uuid.UUID `json:"default_currency_id"`
}

// ChangePasswordReq replaces the password of the current user.
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfile sets the full name and default currency. A null currency
// clears it, so summaries fall back to the configured one.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req UpdateProfileReq
		if !bindJSON(c, &req) {
			return
		}

		if req.DefaultCurrencyID != nil {
			var cur models.Currency
			if err := db.First(&cur, "id = ?", *req.DefaultCurrencyID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					util.Error(c, http.StatusNotFound, util.CodeNotFound, "currency not found")
				} else {
					util.Fail(c, err)
				}
				return
			}
		}

		user.FullName = strings.TrimSpace(req.FullName)
		user.DefaultCurrencyID = req.DefaultCurrencyID
		if err := db.Model(user).Select("full_name", "default_currency_id", "updated_at").Updates(user).Error; err != nil {
			util.Fail(c, err)
			return
		}

		util.Success(c, util.Response{"user": userView(user)})
	}
}

// ChangePassword verifies the old password and stores the new one.
func ChangePassword(db *gorm.DB, cost int) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req ChangePasswordReq
		if !bindJSON(c, &req) {
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			badRequest(c, "old password is wrong")
			return
		}
		if !isStrongPassword(req.NewPassword) {
			badRequest(c, "password must be 8-32 characters with upper case, lower case and digits")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), cost)
		if err != nil {
			util.Fail(c, err)
			return
		}
		if err := db.Model(user).Update("password_hash", string(hash)).Error; err != nil {
			util.Fail(c, err)
			return
		}

		util.Success(c, util.Response{
			"message": "password changed, please log in again",
		})
	}
}
