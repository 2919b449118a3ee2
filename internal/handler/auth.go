package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// AuthHandler serves registration and login.
type AuthHandler struct {
	DB           *gorm.DB
	Tokens       *util.Tokens
	BcryptCost   int
	MaxAttempts  int
	LockDuration time.Duration
	log          *log.Logger
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, tokens *util.Tokens, logger *log.Logger) *AuthHandler {
	cost := cfg.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	attempts := cfg.Security.MaxLoginAttempt
	if attempts <= 0 {
		attempts = 5
	}
	lock := cfg.Security.LockMinutes
	if lock <= 0 {
		lock = 10
	}
	return &AuthHandler{
		DB:           db,
		Tokens:       tokens,
		BcryptCost:   cost,
		MaxAttempts:  attempts,
		LockDuration: time.Duration(lock) * time.Minute,
		log:          logger.WithComponent(log.ComponentAuth),
	}
}

// ---------- register ----------

type registerReq struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FullName        string `json:"full_name" binding:"max=128"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if !bindJSON(c, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernameRe.MatchString(req.Username) {
		badRequest(c, "username must be 3-20 letters, digits or underscores")
		return
	}
	if !isStrongPassword(req.Password) {
		badRequest(c, "password must be 8-32 characters with upper case, lower case and digits")
		return
	}
	if req.Password != req.ConfirmPassword {
		badRequest(c, "passwords do not match")
		return
	}

	// usernames are unique case-insensitively
	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", req.Username).
		Count(&count).Error; err != nil {
		util.Fail(c, err)
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Fail(c, err)
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Fail(c, err)
		return
	}
	h.log.InfoContext(c.Request.Context(), "user registered", log.FieldUserID, user.ID.String())

	util.Success(c, util.Response{
		"message": "registered",
		"user":    userView(&user),
	})
}

// isStrongPassword wants 8-32 characters with upper, lower and digit.
func isStrongPassword(pwd string) bool {
	if len(pwd) < 8 || len(pwd) > 32 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// ---------- login ----------

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	req.Username = strings.TrimSpace(req.Username)

	var user models.User
	if err := h.DB.Where("LOWER(username) = LOWER(?)", req.Username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid username or password")
		} else {
			util.Fail(c, err)
		}
		return
	}

	now := time.Now().UTC()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account locked, try again later")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= h.MaxAttempts {
			lockUntil := now.Add(h.LockDuration)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
			h.log.WarnContext(ctx, "account locked", log.FieldUserID, user.ID.String())
		}
		_ = h.DB.Model(&user).Select("failed_login_attempts", "locked_until").Updates(&user).Error
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid username or password")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginIP = c.ClientIP()
	user.LastLoginAt = &now
	if err := h.DB.Model(&user).
		Select("failed_login_attempts", "locked_until", "last_login_ip", "last_login_at").
		Updates(&user).Error; err != nil {
		h.log.WarnContext(ctx, "record login failed", log.FieldUserID, user.ID.String(), log.FieldError, err.Error())
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"token":      token,
		"expires_in": int(h.Tokens.TTL().Seconds()),
		"user":       userView(&user),
	})
}
