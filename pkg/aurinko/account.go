package aurinko

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// EmailAddress is a display name plus address pair.
type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// OutgoingMessage is the payload of POST /email/messages.
type OutgoingMessage struct {
	From       EmailAddress   `json:"from"`
	To         []EmailAddress `json:"to"`
	Cc         []EmailAddress `json:"cc,omitempty"`
	Bcc        []EmailAddress `json:"bcc,omitempty"`
	ReplyTo    []EmailAddress `json:"replyTo,omitempty"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	ThreadID   string         `json:"threadId,omitempty"`
	InReplyTo  string         `json:"inReplyTo,omitempty"`
	References string         `json:"references,omitempty"`
}

type SentMessage struct {
	ID string `json:"id"`
}

// Webhook is an aggregator subscription that pushes change notifications.
type Webhook struct {
	ID              int64  `json:"id"`
	Resource        string `json:"resource"`
	NotificationURL string `json:"notificationUrl"`
	Active          bool   `json:"active"`
	FailSince       string `json:"failSince,omitempty"`
	FailDescription string `json:"failDescription,omitempty"`
}

type WebhookList struct {
	Records   []Webhook `json:"records"`
	TotalSize int       `json:"totalSize"`
	Offset    int       `json:"offset"`
	Done      bool      `json:"done"`
}

// Error is a non-2xx answer from the aggregator.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("aurinko API error (%d): %s", e.Status, e.Body)
}

// AccountClient calls the aggregator API with one account's bearer token.
type AccountClient struct {
	apiURL     string
	httpClient *http.Client
}

func (a *AccountClient) SendEmail(ctx context.Context, msg OutgoingMessage) (*SentMessage, error) {
	var sent SentMessage
	query := url.Values{"bodyType": {"html"}}
	if err := a.do(ctx, http.MethodPost, "/email/messages", query, msg, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

func (a *AccountClient) ListWebhooks(ctx context.Context) (*WebhookList, error) {
	var list WebhookList
	if err := a.do(ctx, http.MethodGet, "/subscriptions", nil, nil, &list); err != nil {
		return nil, err
	}
	if list.Records == nil {
		list.Records = []Webhook{}
	}
	return &list, nil
}

func (a *AccountClient) CreateWebhook(ctx context.Context, resource, notificationURL string) (*Webhook, error) {
	payload := map[string]string{
		"resource":        resource,
		"notificationUrl": notificationURL,
	}
	var hook Webhook
	if err := a.do(ctx, http.MethodPost, "/subscriptions", nil, payload, &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}

func (a *AccountClient) DeleteWebhook(ctx context.Context, webhookID string) error {
	return a.do(ctx, http.MethodDelete, "/subscriptions/"+url.PathEscape(webhookID), nil, nil, nil)
}

func (a *AccountClient) do(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	target := a.apiURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("aurinko request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
