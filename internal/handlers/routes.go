package handlers

import (
	"github.com/gin-gonic/gin"
)

// Register регистрирует маршруты API; webhookAuth проверяет подпись Konfhub
func (h *Handlers) Register(api *gin.RouterGroup, webhookAuth gin.HandlerFunc) {
	auth := api.Group("/auth")
	{
		auth.POST("/send-otp", h.SendOTP)
		auth.POST("/verify-otp", h.VerifyOTP)
	}

	api.POST("/payment/verify-payment", h.VerifyPayment)
	api.GET("/check-payment", h.CheckPayment)
	api.POST("/passes/purchase", h.PurchasePass)
	api.POST("/webhooks/konfhub", webhookAuth, h.KonfhubWebhook)

	api.GET("/teams", h.ListTeams)

	events := api.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.GET("/calendar", h.EventsCalendar)
		events.GET("/:slug", h.GetEvent)
	}
}
