package handlers

import (
	"net/http"

	"rideshare/internal/http/middleware"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	ResetType   string  `json:"reset_type"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

type verifyOTPRequest struct {
	ResetType   string  `json:"reset_type"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	OTP         string  `json:"otp"`
	NewPassword string  `json:"new_password"`
}

// Register handles POST /api/auth/register.
func Register(c *gin.Context) {
	var req userRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := authService(c).Register(c.Request.Context(), req.createInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

// Login handles POST /api/auth/login.
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	out, err := authService(c).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Profile handles GET /api/auth/profile for the token's user.
func Profile(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "unauthorized", nil)
		return
	}
	u, err := authService(c).Profile(c.Request.Context(), uid)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// RequestPasswordReset handles POST /api/auth/reset. The response does not reveal
// whether the account exists.
func RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	err := authService(c).RequestPasswordReset(c.Request.Context(), services.ResetPasswordInput{
		ResetType:   req.ResetType,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists an otp has been sent"})
}

// VerifyOTP handles POST /api/auth/verify-otp.
func VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	err := authService(c).VerifyOTP(c.Request.Context(), services.VerifyOTPInput{
		ResetType:   req.ResetType,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		OTP:         req.OTP,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
