package middleware

import (
	"errors"
	"net/http"
	"strings"

	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CurrentUserKey is the gin context key holding the authenticated *models.User.
const CurrentUserKey = "currentUser"

// TokenCookie is the cookie consulted when no Authorization header is sent.
const TokenCookie = "ft_token"

// AuthMiddleware verifies the JWT and stores the current user in the context.
func AuthMiddleware(tokens *util.Tokens, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
			c.Abort()
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "user does not exist")
			} else {
				util.Fail(c, err)
			}
			c.Abort()
			return
		}

		logger := log.FromContext(c.Request.Context()).With(log.FieldUserID, user.ID.String())
		c.Request = c.Request.WithContext(log.NewContext(c.Request.Context(), logger))
		c.Set(CurrentUserKey, &user)
		c.Next()
	}
}

// tokenFrom reads the bearer header, then ?token= (downloads), then the cookie.
func tokenFrom(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
