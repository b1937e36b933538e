package dto

import (
	accountdomain "inboxpilot-backend/internal/account/domain"
	"inboxpilot-backend/pkg/aurinko"
)

type AuthorizeResponse struct {
	URL string `json:"url"`
}

type AccountResponse struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	Name         string `json:"name"`
	Provider     string `json:"provider,omitempty"`
}

func NewAccountResponse(account accountdomain.Account) AccountResponse {
	return AccountResponse{
		ID:           account.ID,
		EmailAddress: account.EmailAddress,
		Name:         account.Name,
		Provider:     account.Provider,
	}
}

type AccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

type EmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address" binding:"omitempty,email"`
}

type SendEmailRequest struct {
	AccountID  string         `json:"accountId" binding:"required"`
	From       EmailAddress   `json:"from"`
	To         []EmailAddress `json:"to" binding:"dive"`
	Cc         []EmailAddress `json:"cc" binding:"dive"`
	Bcc        []EmailAddress `json:"bcc" binding:"dive"`
	ReplyTo    *EmailAddress  `json:"replyTo"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	ThreadID   string         `json:"threadId"`
	InReplyTo  string         `json:"inReplyTo"`
	References string         `json:"references"`
}

type SendEmailResponse struct {
	ID string `json:"id"`
}

type CreateWebhookRequest struct {
	AccountID       string `json:"accountId" binding:"required"`
	NotificationURL string `json:"notificationUrl" binding:"required,url"`
}

type WebhooksResponse struct {
	Webhooks []aurinko.Webhook `json:"webhooks"`
}
