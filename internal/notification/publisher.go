package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type syncPayload struct {
	AccountID string `json:"accountId"`
	UserID    string `json:"userId"`
}

// HTTPPublisher posts sync requests to the ingestion service.
type HTTPPublisher struct {
	url    string
	client *http.Client
}

func NewHTTPPublisher(url string, timeout time.Duration) *HTTPPublisher {
	return &HTTPPublisher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPPublisher) Publish(ctx context.Context, req SyncRequest) error {
	body, err := json.Marshal(syncPayload{AccountID: req.AccountID, UserID: req.UserID})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", req.JobID)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach sync service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sync service returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// PubSubPublisher publishes sync requests to a Google Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func NewPubSubPublisher(ctx context.Context, projectID, topicName, credentialsFile string) (*PubSubPublisher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &PubSubPublisher{
		client: client,
		topic:  client.Topic(topicName),
	}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, req SyncRequest) error {
	data, err := json.Marshal(syncPayload{AccountID: req.AccountID, UserID: req.UserID})
	if err != nil {
		return err
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"jobId": req.JobID},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish sync request: %w", err)
	}
	return nil
}

func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
