package delivery

import (
	"net/http"

	"inboxpilot-backend/internal/apperror"
	authdelivery "inboxpilot-backend/internal/auth/delivery"
	chatdomain "inboxpilot-backend/internal/chat/domain"
	"inboxpilot-backend/internal/chat/usecase"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
}

func NewChatHandler(chatUsecase usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{
		chatUsecase: chatUsecase,
	}
}

// Chat streams an answer grounded on the account's indexed mail. Errors
// found before the first byte is written are returned as plain JSON.
func (h *ChatHandler) Chat(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	var req chatdomain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.ValidationFailed("invalid chat request"))
		return
	}
	if req.AccountID == "" {
		req.AccountID = c.Query("accountId")
	}

	reply, err := h.chatUsecase.Start(c.Request.Context(), identity, req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	streamReply(c, reply)
}

// GetChatbotInteraction reports how many free answers are left today.
func (h *ChatHandler) GetChatbotInteraction(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	remaining, err := h.chatUsecase.RemainingCredits(c.Request.Context(), identity.UserID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remainingCredits": remaining})
}

type ComposeHandler struct {
	composeUsecase usecase.ComposeUsecase
}

func NewComposeHandler(composeUsecase usecase.ComposeUsecase) *ComposeHandler {
	return &ComposeHandler{
		composeUsecase: composeUsecase,
	}
}

type generateRequest struct {
	Context string `json:"context"`
	Prompt  string `json:"prompt" binding:"required"`
}

type extendRequest struct {
	Input string `json:"input" binding:"required"`
}

func (h *ComposeHandler) Generate(c *gin.Context) {
	if _, ok := authdelivery.RequireIdentity(c); !ok {
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.ValidationFailed("prompt is required"))
		return
	}

	reply, err := h.composeUsecase.GenerateEmail(c.Request.Context(), req.Context, req.Prompt)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	streamReply(c, reply)
}

func (h *ComposeHandler) Extend(c *gin.Context) {
	if _, ok := authdelivery.RequireIdentity(c); !ok {
		return
	}

	var req extendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.ValidationFailed("input is required"))
		return
	}

	reply, err := h.composeUsecase.ExtendText(c.Request.Context(), req.Input)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	streamReply(c, reply)
}
