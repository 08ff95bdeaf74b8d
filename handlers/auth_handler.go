package handlers

import (
	"net/http"

	"pingly-server/internal/models"
	"pingly-server/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	if err := h.authService.Register(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "verification code sent",
		"email":   req.Email,
	})
}

// VerifyOTP serves both flows: completing a signup and authorizing a
// password reset.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	switch req.Flow {
	case services.FlowForgotPassword:
		if err := h.authService.VerifyResetOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"verified": true})
	default:
		response, err := h.authService.VerifySignupOTP(c.Request.Context(), req.Email, req.OTP, c.ClientIP())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	response, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "refresh token is required"})
		return
	}
	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.LogoutRequest
	_ = c.ShouldBindJSON(&req) // refresh token is optional on logout

	if err := h.authService.Logout(c.Request.Context(), currentUserID(c), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	// same response whether or not the account exists
	c.JSON(http.StatusOK, gin.H{"message": "if that email is registered, a code has been sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated, please log in"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
