package usecase

import (
	"context"
	"strings"

	accountdto "inboxpilot-backend/internal/account/dto"
	"inboxpilot-backend/internal/apperror"
	"inboxpilot-backend/pkg/aurinko"

	"github.com/rs/zerolog/log"
)

const webhookResource = "/email/messages"

func (u *accountUsecase) SendEmail(ctx context.Context, userID string, req accountdto.SendEmailRequest) (*accountdto.SendEmailResponse, error) {
	creds, err := u.guard.Authorize(ctx, req.AccountID, userID)
	if err != nil {
		return nil, err
	}

	to, toOK := addresses(req.To)
	cc, ccOK := addresses(req.Cc)
	bcc, bccOK := addresses(req.Bcc)
	if !toOK || !ccOK || !bccOK {
		return nil, apperror.ValidationFailed("recipient address is required")
	}
	if len(to)+len(cc)+len(bcc) == 0 {
		return nil, apperror.ValidationFailed("at least one recipient is required")
	}

	from := aurinko.EmailAddress{Name: req.From.Name, Address: req.From.Address}
	if from.Address == "" {
		from = aurinko.EmailAddress{Name: creds.Name, Address: creds.EmailAddress}
	}

	msg := aurinko.OutgoingMessage{
		From:       from,
		To:         to,
		Cc:         cc,
		Bcc:        bcc,
		Subject:    req.Subject,
		Body:       req.Body,
		ThreadID:   req.ThreadID,
		InReplyTo:  req.InReplyTo,
		References: req.References,
	}
	if req.ReplyTo != nil && req.ReplyTo.Address != "" {
		msg.ReplyTo = []aurinko.EmailAddress{{Name: req.ReplyTo.Name, Address: req.ReplyTo.Address}}
	}

	sent, err := u.provider.ForAccount(ctx, creds.Token).SendEmail(ctx, msg)
	if err != nil {
		return nil, apperror.Upstream("aurinko", err)
	}
	log.Info().Str("account_id", creds.ID).Str("message_id", sent.ID).Msg("email sent")
	return &accountdto.SendEmailResponse{ID: sent.ID}, nil
}

func (u *accountUsecase) GetWebhooks(ctx context.Context, userID, accountID string) ([]aurinko.Webhook, error) {
	creds, err := u.guard.Authorize(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	list, err := u.provider.ForAccount(ctx, creds.Token).ListWebhooks(ctx)
	if err != nil {
		return nil, apperror.Upstream("aurinko", err)
	}
	return list.Records, nil
}

func (u *accountUsecase) CreateWebhook(ctx context.Context, userID, accountID, notificationURL string) (*aurinko.Webhook, error) {
	if strings.TrimSpace(notificationURL) == "" {
		return nil, apperror.ValidationFailed("notificationUrl is required")
	}
	creds, err := u.guard.Authorize(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	hook, err := u.provider.ForAccount(ctx, creds.Token).CreateWebhook(ctx, webhookResource, notificationURL)
	if err != nil {
		return nil, apperror.Upstream("aurinko", err)
	}
	return hook, nil
}

func (u *accountUsecase) DeleteWebhook(ctx context.Context, userID, accountID, webhookID string) error {
	if strings.TrimSpace(webhookID) == "" {
		return apperror.ValidationFailed("webhookId is required")
	}
	creds, err := u.guard.Authorize(ctx, accountID, userID)
	if err != nil {
		return err
	}

	if err := u.provider.ForAccount(ctx, creds.Token).DeleteWebhook(ctx, webhookID); err != nil {
		return apperror.Upstream("aurinko", err)
	}
	return nil
}

func addresses(in []accountdto.EmailAddress) ([]aurinko.EmailAddress, bool) {
	out := make([]aurinko.EmailAddress, 0, len(in))
	for _, a := range in {
		if strings.TrimSpace(a.Address) == "" {
			return nil, false
		}
		out = append(out, aurinko.EmailAddress{Name: a.Name, Address: a.Address})
	}
	return out, true
}
