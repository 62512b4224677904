package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kebab-storefront/utils"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextAdmin  = "admin"
)

var (
	errTokenMissing  = errors.New("authorization token missing")
	errTokenInvalid  = errors.New("invalid or expired token")
	errAdminRequired = errors.New("admin access required")
)

// AdminAuthMiddleware admits only bearer tokens carrying the admin claim.
// Every failure is a 403.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.AbortWithError(c, http.StatusForbidden, errTokenMissing)
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			utils.AbortWithError(c, http.StatusForbidden, errTokenInvalid)
			return
		}
		authorizeAdmin(c, secret, strings.TrimPrefix(header, "Bearer "))
	}
}

func authorizeAdmin(c *gin.Context, secret, token string) {
	claims, err := utils.ParseToken(secret, token)
	if err != nil {
		utils.AbortWithError(c, http.StatusForbidden, errTokenInvalid)
		return
	}
	if !claims.Admin {
		utils.ErrorLogger.WithField("email", claims.Email).Warn("non-admin token on admin route")
		utils.AbortWithError(c, http.StatusForbidden, errAdminRequired)
		return
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextAdmin, true)
	c.Next()
}
