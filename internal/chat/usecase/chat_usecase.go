package usecase

import (
	"context"
	"strings"
	"time"

	accountusecase "inboxpilot-backend/internal/account/usecase"
	"inboxpilot-backend/internal/apperror"
	authdomain "inboxpilot-backend/internal/auth/domain"
	authusecase "inboxpilot-backend/internal/auth/usecase"
	chatdomain "inboxpilot-backend/internal/chat/domain"
	"inboxpilot-backend/pkg/ai"

	"github.com/rs/zerolog/log"
)

// ChatUsecase answers questions about an account's mail.
type ChatUsecase interface {
	// Start checks access and quota, retrieves context and opens the
	// completion stream. The caller must drain or Close the Reply.
	Start(ctx context.Context, identity *authdomain.Identity, req chatdomain.ChatRequest) (*Reply, error)
	RemainingCredits(ctx context.Context, userID string) (int, error)
}

// chatUsecase implements ChatUsecase interface
type chatUsecase struct {
	guard       accountusecase.Guard
	authUsecase authusecase.AuthUsecase
	quota       QuotaTracker
	searcher    Searcher
	streamer    ai.ChatStreamer
	model       string
	now         func() time.Time
}

// NewChatUsecase creates a new instance of chatUsecase
func NewChatUsecase(
	guard accountusecase.Guard,
	authUsecase authusecase.AuthUsecase,
	quota QuotaTracker,
	searcher Searcher,
	streamer ai.ChatStreamer,
	model string,
) ChatUsecase {
	return &chatUsecase{
		guard:       guard,
		authUsecase: authUsecase,
		quota:       quota,
		searcher:    searcher,
		streamer:    streamer,
		model:       model,
		now:         time.Now,
	}
}

func validateChatRequest(req chatdomain.ChatRequest) error {
	if strings.TrimSpace(req.AccountID) == "" {
		return apperror.ValidationFailed("accountId is required")
	}
	if len(req.Messages) == 0 {
		return apperror.ValidationFailed("at least one message is required")
	}
	for _, m := range req.Messages {
		switch ai.Role(m.Role) {
		case ai.RoleUser, ai.RoleAssistant, ai.RoleSystem:
		default:
			return apperror.ValidationFailed("unknown message role: " + m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return apperror.ValidationFailed("message content is required")
		}
	}
	if req.LastMessage().Role != string(ai.RoleUser) {
		return apperror.ValidationFailed("last message must come from the user")
	}
	return nil
}

func (u *chatUsecase) Start(ctx context.Context, identity *authdomain.Identity, req chatdomain.ChatRequest) (*Reply, error) {
	if identity == nil || identity.UserID == "" {
		return nil, apperror.Unauthorized()
	}
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}

	if _, err := u.guard.Authorize(ctx, req.AccountID, identity.UserID); err != nil {
		return nil, err
	}

	subscribed, err := u.authUsecase.IsSubscribed(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	reservation, err := u.quota.Reserve(ctx, identity.UserID, subscribed)
	if err != nil {
		return nil, err
	}

	snippets, err := u.searcher.Search(ctx, req.AccountID, req.LastMessage().Content)
	if err != nil {
		log.Error().Err(err).Str("account_id", req.AccountID).Msg("context retrieval failed")
		u.release(ctx, reservation)
		return nil, apperror.ChatFailed()
	}

	stream, err := u.streamer.StreamChat(ctx, ai.ChatRequest{
		Model:    u.model,
		Messages: buildTurns(BuildSystemPrompt(u.now(), snippets), req.Messages),
	})
	if err != nil {
		log.Error().Err(err).Str("account_id", req.AccountID).Msg("failed to open completion stream")
		u.release(ctx, reservation)
		return nil, apperror.ChatFailed()
	}

	return newReply(ctx, stream, reservation), nil
}

func (u *chatUsecase) release(ctx context.Context, reservation *Reservation) {
	if err := reservation.Release(ctx); err != nil {
		log.Error().Err(err).Msg("failed to release quota reservation")
	}
}

func (u *chatUsecase) RemainingCredits(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperror.Unauthorized()
	}
	return u.quota.Remaining(ctx, userID)
}
