package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrInvalidAccount   = errors.New("invalid account")
	ErrValidation       = errors.New("validation error")
	ErrQuotaExceeded    = errors.New("account quota exceeded")
	ErrLimitReached     = errors.New("daily limit reached")
	ErrUpstream         = errors.New("upstream error")
	ErrConnectionFailed = errors.New("account connection failed")
	ErrTokenExchange    = errors.New("token exchange failed")
	ErrChatFailed       = errors.New("chat failed")
)

// AppError carries a sentinel (for errors.Is), a machine-readable code and a
// message that is safe to show to the end user.
type AppError struct {
	Err     error
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Unauthorized() *AppError {
	return &AppError{Err: ErrUnauthorized, Code: "UNAUTHORIZED", Message: "authentication required"}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// InvalidAccount is returned by the account guard. The message never says
// whether the account exists for another user.
func InvalidAccount() *AppError {
	return &AppError{Err: ErrInvalidAccount, Code: "INVALID_ACCOUNT", Message: "account not found"}
}

func ValidationFailed(message string) *AppError {
	return &AppError{Err: ErrValidation, Code: "VALIDATION_ERROR", Message: message}
}

// QuotaExceeded reports that the user already linked the maximum number of
// accounts allowed for the given tier ("free" or "pro").
func QuotaExceeded(tier string) *AppError {
	return &AppError{
		Err:     ErrQuotaExceeded,
		Code:    "ACCOUNT_LIMIT_REACHED",
		Message: fmt.Sprintf("you reached your %s account limit", tier),
	}
}

func LimitReached() *AppError {
	return &AppError{Err: ErrLimitReached, Code: "LIMIT_REACHED", Message: "daily assistant limit reached"}
}

// Upstream wraps a provider failure. The cause is kept in the chain for logging.
func Upstream(provider string, cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrUpstream, cause),
		Code:    "UPSTREAM_ERROR",
		Message: fmt.Sprintf("%s request failed", provider),
	}
}

func ConnectionFailed() *AppError {
	return &AppError{Err: ErrConnectionFailed, Code: "ACCOUNT_CONNECTION_FAILED", Message: "account connection failed"}
}

func TokenExchangeFailed() *AppError {
	return &AppError{Err: ErrTokenExchange, Code: "TOKEN_EXCHANGE_FAILED", Message: "failed to fetch token"}
}

func ChatFailed() *AppError {
	return &AppError{Err: ErrChatFailed, Code: "CHAT_FAILED", Message: "the assistant could not answer"}
}
