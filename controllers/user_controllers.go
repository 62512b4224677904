package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kebab-storefront/middlewares"
	"github.com/yeremiapane/kebab-storefront/services"
	"github.com/yeremiapane/kebab-storefront/utils"
)

type UserController struct {
	Users     *services.UserService
	JWTSecret string
	TokenTTL  time.Duration
}

func NewUserController(users *services.UserService, secret string, ttl time.Duration) *UserController {
	return &UserController{Users: users, JWTSecret: secret, TokenTTL: ttl}
}

// Login -> POST /login, returns a JWT carrying the admin claim
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Users.Authenticate(c.Request.Context(), input.Email, input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.ErrorLogger.WithField("ip", c.ClientIP()).Warn("failed login attempt")
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := utils.GenerateToken(uc.JWTSecret, user.ID, user.Email, user.Admin, uc.TokenTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("email", user.Email).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"admin": user.Admin,
	})
}

// SetAdminClaim -> POST /admin/claim
func (uc *UserController) SetAdminClaim(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
		Admin *bool  `json:"admin"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	admin := true
	if body.Admin != nil {
		admin = *body.Admin
	}

	user, err := uc.Users.SetAdminClaim(c.Request.Context(), body.Email, admin)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
		return
	case err != nil:
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("email", user.Email).
		WithField("admin", admin).
		WithField("by", c.GetString(middlewares.ContextEmail)).
		Info("admin claim updated")

	message := fmt.Sprintf("Success! %s has been made an admin.", user.Email)
	if !admin {
		message = fmt.Sprintf("Success! %s is no longer an admin.", user.Email)
	}
	utils.RespondJSON(c, http.StatusOK, message, user)
}
