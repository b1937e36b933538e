package delivery

import (
	"net/http"

	accountdto "inboxpilot-backend/internal/account/dto"
	"inboxpilot-backend/internal/account/usecase"
	"inboxpilot-backend/internal/apperror"
	authdelivery "inboxpilot-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

const mailPath = "/mail"

type AccountHandler struct {
	accountUsecase usecase.AccountUsecase
}

func NewAccountHandler(accountUsecase usecase.AccountUsecase) *AccountHandler {
	return &AccountHandler{
		accountUsecase: accountUsecase,
	}
}

// Authorize returns the aggregator consent URL for the requested provider.
func (h *AccountHandler) Authorize(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	url, err := h.accountUsecase.BuildAuthorizationURL(c.Request.Context(), *identity, c.Query("serviceType"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, accountdto.AuthorizeResponse{URL: url})
}

// Callback is where the aggregator sends the browser after consent.
func (h *AccountHandler) Callback(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	if err := h.accountUsecase.HandleCallback(c.Request.Context(), *identity, c.Query("status"), c.Query("code")); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.Redirect(http.StatusFound, mailPath)
}

func (h *AccountHandler) GetAccounts(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	accounts, err := h.accountUsecase.GetAccounts(c.Request.Context(), identity.UserID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, accountdto.AccountsResponse{Accounts: accounts})
}

func (h *AccountHandler) GetMyAccount(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	account, err := h.accountUsecase.GetMyAccount(c.Request.Context(), identity.UserID, c.Query("accountId"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) SendEmail(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	var req accountdto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.ValidationFailed(err.Error()))
		return
	}

	resp, err := h.accountUsecase.SendEmail(c.Request.Context(), identity.UserID, req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AccountHandler) GetWebhooks(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	hooks, err := h.accountUsecase.GetWebhooks(c.Request.Context(), identity.UserID, c.Query("accountId"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, accountdto.WebhooksResponse{Webhooks: hooks})
}

func (h *AccountHandler) CreateWebhook(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	var req accountdto.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.ValidationFailed(err.Error()))
		return
	}

	hook, err := h.accountUsecase.CreateWebhook(c.Request.Context(), identity.UserID, req.AccountID, req.NotificationURL)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, hook)
}

func (h *AccountHandler) DeleteWebhook(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	err := h.accountUsecase.DeleteWebhook(c.Request.Context(), identity.UserID, c.Query("accountId"), c.Param("webhookId"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "webhook deleted"})
}
