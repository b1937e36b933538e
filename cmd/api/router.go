package api

import (
	"net/http"

	accountDelivery "inboxpilot-backend/internal/account/delivery"
	"inboxpilot-backend/internal/auth/delivery"
	authUsecase "inboxpilot-backend/internal/auth/usecase"
	chatDelivery "inboxpilot-backend/internal/chat/delivery"
	emailDelivery "inboxpilot-backend/internal/email/delivery"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Account *accountDelivery.AccountHandler
	Email   *emailDelivery.EmailHandler
	Chat    *chatDelivery.ChatHandler
	Compose *chatDelivery.ComposeHandler
}

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, h Handlers) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		aurinko := api.Group("/aurinko")
		{
			aurinko.GET("/authorize", delivery.AuthMiddleware(authUsecase), h.Account.Authorize)
			aurinko.GET("/callback", delivery.CallbackAuthMiddleware(authUsecase), h.Account.Callback)
		}

		api.POST("/chat", delivery.AuthMiddleware(authUsecase), h.Chat.Chat)

		mail := api.Group("/mail")
		mail.Use(delivery.AuthMiddleware(authUsecase))
		{
			mail.GET("/accounts", h.Account.GetAccounts)
			mail.GET("/accounts/me", h.Account.GetMyAccount)
			mail.GET("/threads/count", h.Email.GetNumThreads)
			mail.GET("/threads", h.Email.GetThreads)
			mail.GET("/chatbot-interaction", h.Chat.GetChatbotInteraction)
			mail.POST("/send", h.Account.SendEmail)
		}

		webhooks := api.Group("/webhooks")
		webhooks.Use(delivery.AuthMiddleware(authUsecase))
		{
			webhooks.GET("", h.Account.GetWebhooks)
			webhooks.POST("", h.Account.CreateWebhook)
			webhooks.DELETE("/:webhookId", h.Account.DeleteWebhook)
		}

		compose := api.Group("/compose")
		compose.Use(delivery.AuthMiddleware(authUsecase))
		{
			compose.POST("/generate", h.Compose.Generate)
			compose.POST("/extend", h.Compose.Extend)
		}
	}
}
