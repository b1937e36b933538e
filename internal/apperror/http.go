package apperror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every error returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HTTPStatus maps an error chain to a status code and machine-readable code.
func HTTPStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, ErrInvalidAccount):
		return http.StatusNotFound, "INVALID_ACCOUNT"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, ErrConnectionFailed):
		return http.StatusBadRequest, "ACCOUNT_CONNECTION_FAILED"
	case errors.Is(err, ErrTokenExchange):
		return http.StatusBadRequest, "TOKEN_EXCHANGE_FAILED"
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusTooManyRequests, "ACCOUNT_LIMIT_REACHED"
	case errors.Is(err, ErrLimitReached):
		return http.StatusTooManyRequests, "LIMIT_REACHED"
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	case errors.Is(err, ErrChatFailed):
		return http.StatusInternalServerError, "CHAT_FAILED"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// Respond writes err as JSON. Only AppError messages reach the client; anything
// else is logged and replaced by a generic message.
func Respond(c *gin.Context, err error) {
	status, code := HTTPStatus(err)

	var appErr *AppError
	if errors.As(err, &appErr) {
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		}
		c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: appErr.Message})
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Message: "an internal error occurred",
	})
}
