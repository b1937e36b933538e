package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaStreamer implements ChatStreamer using an Ollama local LLM
type OllamaStreamer struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaStreamer creates a new Ollama streamer
func NewOllamaStreamer(baseURL, model string) *OllamaStreamer {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaStreamer{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		// No client timeout: streams end when the model finishes or ctx is cancelled.
		client: &http.Client{},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChunk struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

func (o *OllamaStreamer) StreamChat(ctx context.Context, req ChatRequest) (Stream, error) {
	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, ollamaMessage{Role: string(m.Role), Content: m.Content})
	}

	payload := map[string]interface{}{
		"model":    o.model,
		"messages": messages,
		"stream":   true,
	}
	if req.Temperature != nil {
		payload["options"] = map[string]interface{}{
			"temperature": *req.Temperature,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ollamaStream{body: resp.Body, scanner: scanner}, nil
}

// ollamaStream reads newline-delimited JSON chunks.
type ollamaStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	current string
	err     error
	done    bool
}

func (s *ollamaStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk ollamaChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			s.err = fmt.Errorf("failed to parse ollama chunk: %w", err)
			return false
		}
		if chunk.Error != "" {
			s.err = errors.New(chunk.Error)
			return false
		}
		if chunk.Message.Content != "" {
			s.current = chunk.Message.Content
			if chunk.Done {
				s.done = true
			}
			return true
		}
		if chunk.Done {
			s.done = true
			return false
		}
	}

	if err := s.scanner.Err(); err != nil {
		s.err = err
		return false
	}
	// The body ended without a done marker.
	s.err = io.ErrUnexpectedEOF
	return false
}

func (s *ollamaStream) Current() string {
	return s.current
}

func (s *ollamaStream) Err() error {
	return s.err
}

func (s *ollamaStream) Close() error {
	return s.body.Close()
}
