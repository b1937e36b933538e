package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s Stream) (string, error) {
	t.Helper()
	var sb strings.Builder
	for s.Next() {
		sb.WriteString(s.Current())
	}
	_ = s.Close()
	return sb.String(), s.Err()
}

func openAIChunk(text string) string {
	chunk := map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 1,
		"model":   "gpt-4.1",
		"choices": []map[string]interface{}{{
			"index":         0,
			"delta":         map[string]string{"content": text},
			"finish_reason": nil,
		}},
	}
	b, _ := json.Marshal(chunk)
	return "data: " + string(b) + "\n\n"
}

func TestOpenAIStreamer(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, openAIChunk(""))
		fmt.Fprint(w, openAIChunk("The invoice "))
		fmt.Fprint(w, openAIChunk("is in your inbox."))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	streamer := NewOpenAIStreamer("sk-test", srv.URL+"/v1/")
	stream, err := streamer.StreamChat(context.Background(), ChatRequest{
		Model: "gpt-4.1",
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "Where is the invoice?"},
		},
		Temperature: Float(0.2),
	})
	require.NoError(t, err)

	text, err := drain(t, stream)
	require.NoError(t, err)
	assert.Equal(t, "The invoice is in your inbox.", text)

	assert.Equal(t, "gpt-4.1", gotBody["model"])
	assert.Equal(t, true, gotBody["stream"])
	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenAIStreamerOpenFailure(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited","type":"requests"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAIStreamer("sk-test", srv.URL+"/v1/").StreamChat(context.Background(), ChatRequest{
		Model:    "gpt-4.1",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, isQuotaError(err))
	assert.Equal(t, 1, hits)
}

func TestOllamaStreamer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3", body["model"])
		assert.Equal(t, true, body["stream"])

		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Hel"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"lo"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	stream, err := NewOllamaStreamer(srv.URL, "").StreamChat(context.Background(), ChatRequest{
		Model:    "ignored",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	text, err := drain(t, stream)
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestOllamaStreamerErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		openFail bool
	}{
		{name: "http error", status: http.StatusInternalServerError, body: "boom", openFail: true},
		{name: "error chunk", status: http.StatusOK, body: `{"error":"model not found"}` + "\n"},
		{name: "truncated", status: http.StatusOK, body: `{"message":{"role":"assistant","content":"Hi"},"done":false}` + "\n"},
		{name: "garbage", status: http.StatusOK, body: "not json\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			stream, err := NewOllamaStreamer(srv.URL, "llama3").StreamChat(context.Background(), ChatRequest{
				Messages: []Message{{Role: RoleUser, Content: "hi"}},
			})
			if tt.openFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, err = drain(t, stream)
			assert.Error(t, err)
		})
	}
}

type staticStreamer struct {
	err   error
	calls int
}

func (s *staticStreamer) StreamChat(ctx context.Context, req ChatRequest) (Stream, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ollamaStream{done: true}, nil
}

func TestFallbackStreamer(t *testing.T) {
	tests := []struct {
		name          string
		primaryErr    error
		wantErr       bool
		wantSecondary int
	}{
		{name: "primary ok", wantSecondary: 0},
		{name: "connection refused", primaryErr: errors.New("dial tcp 127.0.0.1:1: connection refused"), wantSecondary: 1},
		{name: "quota", primaryErr: errors.New("429 Too Many Requests"), wantSecondary: 1},
		{name: "bad request is not retried", primaryErr: errors.New("400 invalid model"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &staticStreamer{err: tt.primaryErr}
			secondary := &staticStreamer{}
			_, err := NewFallbackStreamer(primary, secondary).StreamChat(context.Background(), ChatRequest{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, primary.calls)
			assert.Equal(t, tt.wantSecondary, secondary.calls)
		})
	}
}

func TestNewChatStreamer(t *testing.T) {
	_, err := NewChatStreamer(Config{Provider: ProviderOpenAI})
	assert.Error(t, err)

	s, err := NewChatStreamer(Config{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.IsType(t, &OllamaStreamer{}, s)

	s, err = NewChatStreamer(Config{Provider: ProviderAuto, OpenAIAPIKey: "sk"})
	require.NoError(t, err)
	assert.IsType(t, &FallbackStreamer{}, s)

	_, err = NewChatStreamer(Config{Provider: "gemini"})
	assert.Error(t, err)
}
