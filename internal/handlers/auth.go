package handlers

import (
	"errors"
	"net/http"

	"milan/internal/logger"
	"milan/internal/models"
	"milan/internal/service"

	"github.com/gin-gonic/gin"
)

// Auth handlers

// SendOTP - POST /api/auth/send-otp
// Сгенерировать OTP и отправить его на почту через удаленный backend
func (h *Handlers) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "A valid email is required"})
		return
	}

	resp, err := h.services.Auth.SendOTP(c.Request.Context(), req.Email)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to send OTP", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to send OTP"})
		return
	}

	relay(c, resp)
}

// VerifyOTP - POST /api/auth/verify-otp
// Проверить OTP и вернуть пользователя
func (h *Handlers) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email and otp are required"})
		return
	}

	user, err := h.services.Auth.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if errors.Is(err, service.ErrInvalidOTP) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired OTP"})
		return
	}
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to verify OTP", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to verify OTP"})
		return
	}

	c.JSON(http.StatusOK, models.VerifyOTPResponse{Success: true, User: *user})
}
