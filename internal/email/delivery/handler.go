package delivery

import (
	"net/http"
	"strconv"

	"inboxpilot-backend/internal/apperror"
	authdelivery "inboxpilot-backend/internal/auth/delivery"
	emaildto "inboxpilot-backend/internal/email/dto"
	"inboxpilot-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	threadUsecase usecase.ThreadUsecase
}

func NewEmailHandler(threadUsecase usecase.ThreadUsecase) *EmailHandler {
	return &EmailHandler{
		threadUsecase: threadUsecase,
	}
}

func (h *EmailHandler) GetNumThreads(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	count, err := h.threadUsecase.GetNumThreads(c.Request.Context(), identity.UserID, c.Query("accountId"), c.Query("tab"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, emaildto.ThreadCountResponse{Count: count})
}

func (h *EmailHandler) GetThreads(c *gin.Context) {
	identity, ok := authdelivery.RequireIdentity(c)
	if !ok {
		return
	}

	done := false
	if doneStr := c.Query("done"); doneStr != "" {
		parsed, err := strconv.ParseBool(doneStr)
		if err != nil {
			apperror.Respond(c, apperror.ValidationFailed("done must be true or false"))
			return
		}
		done = parsed
	}

	threads, err := h.threadUsecase.GetThreads(c.Request.Context(), identity.UserID, c.Query("accountId"), c.Query("tab"), done)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, emaildto.ThreadsResponse{Threads: threads})
}
