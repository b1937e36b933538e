package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inboxpilot-backend/internal/apperror"
	"inboxpilot-backend/pkg/ai"

	"github.com/rs/zerolog/log"
)

const (
	composeSystemPrompt = "You are an AI email assistant. Write clear, helpful and concise email content only. Do not output subjects."
	extendSystemPrompt  = "Respond in clean plain text only. No HTML, no markdown."

	// Drafts vary a little between runs; chat answers keep the provider default.
	composeTemperature = 0.7
)

// ComposeUsecase drafts email text. It is not metered by the daily quota.
type ComposeUsecase interface {
	GenerateEmail(ctx context.Context, emailContext, prompt string) (*Reply, error)
	ExtendText(ctx context.Context, input string) (*Reply, error)
}

// composeUsecase implements ComposeUsecase interface
type composeUsecase struct {
	streamer ai.ChatStreamer
	model    string
	now      func() time.Time
}

// NewComposeUsecase creates a new instance of composeUsecase
func NewComposeUsecase(streamer ai.ChatStreamer, model string) ComposeUsecase {
	return &composeUsecase{
		streamer: streamer,
		model:    model,
		now:      time.Now,
	}
}

func (u *composeUsecase) GenerateEmail(ctx context.Context, emailContext, prompt string) (*Reply, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperror.ValidationFailed("prompt is required")
	}

	user := fmt.Sprintf(`TIME: %s

CONTEXT:
%s

PROMPT:
%s

Rules:
- No subject line
- No greetings unless needed
- No markdown, no HTML
- Provide only the email body`, u.now().Format(promptTimeLayout), emailContext, prompt)

	return u.open(ctx, composeSystemPrompt, user)
}

func (u *composeUsecase) ExtendText(ctx context.Context, input string) (*Reply, error) {
	if strings.TrimSpace(input) == "" {
		return nil, apperror.ValidationFailed("input is required")
	}
	return u.open(ctx, extendSystemPrompt, "Extend this naturally: "+input)
}

func (u *composeUsecase) open(ctx context.Context, system, user string) (*Reply, error) {
	stream, err := u.streamer.StreamChat(ctx, ai.ChatRequest{
		Model: u.model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: system},
			{Role: ai.RoleUser, Content: user},
		},
		Temperature: ai.Float(composeTemperature),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to open compose stream")
		return nil, apperror.ChatFailed()
	}
	return newReply(ctx, stream, nil), nil
}
