package handlers

import (
	"errors"
	"net/http"

	apperrors "milan/internal/errors"
	"milan/internal/logger"
	"milan/internal/models"
	"milan/internal/service"

	"github.com/gin-gonic/gin"
)

// Payments handlers

// VerifyPayment - POST /api/payment/verify-payment
// Проверить подпись Razorpay и подтвердить бронирование
func (h *Handlers) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest

	defer func() {
		if r := recover(); r != nil {
			logger.WithContext(c.Request.Context()).Error("Payment verification panicked",
				"panic", r,
				"order_id", req.RazorpayOrderID,
				"payment_id", req.RazorpayPaymentID)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Success:   false,
				Error:     "Payment verification failed. Please contact support with your payment id.",
				Code:      apperrors.CodeVerificationFailed,
				PaymentID: req.RazorpayPaymentID,
			})
		}
	}()

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   "Invalid request body",
			Code:    apperrors.CodeMissingFields,
		})
		return
	}

	resp, err := h.services.Payments.Verify(c.Request.Context(), &req)
	if err != nil {
		appErr := apperrors.As(err)
		if appErr.Status >= http.StatusInternalServerError {
			logger.WithContext(c.Request.Context()).Error("Payment verification failed",
				"error", err,
				"code", appErr.Code,
				"order_id", req.RazorpayOrderID,
				"payment_id", req.RazorpayPaymentID)
		}
		c.JSON(appErr.Status, models.ErrorResponse{
			Success:   false,
			Error:     appErr.Message,
			Code:      appErr.Code,
			PaymentID: appErr.PaymentID,
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckPayment - GET /api/check-payment?email=
// Статус оплаты, записанный webhook Konfhub
func (h *Handlers) CheckPayment(c *gin.Context) {
	paid, err := h.services.Status.CheckPayment(c.Request.Context(), c.Query("email"))
	if errors.Is(err, service.ErrEmailRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to check payment status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check payment status"})
		return
	}

	c.JSON(http.StatusOK, models.CheckPaymentResponse{Paid: paid})
}

// KonfhubWebhook - POST /api/webhooks/konfhub
// Принимать уведомления Konfhub об оплате
func (h *Handlers) KonfhubWebhook(c *gin.Context) {
	var payload models.KonfhubWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	if err := h.services.Status.RecordWebhook(c.Request.Context(), &payload); err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to record webhook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, models.WebhookAck{Received: true})
}

// PurchasePass - POST /api/passes/purchase
// Переслать покупку пропуска на удаленный backend
func (h *Handlers) PurchasePass(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	resp, err := h.services.Passes.Purchase(c.Request.Context(), body, c.GetHeader("Authorization"))
	if errors.Is(err, service.ErrInvalidBody) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to purchase pass", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purchase pass"})
		return
	}

	relay(c, resp)
}
