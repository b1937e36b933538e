package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"
)

// OpenAIStreamer implements ChatStreamer on the chat completions API.
type OpenAIStreamer struct {
	client openai.Client
}

// NewOpenAIStreamer creates a streamer. baseURL may point at any
// compatible endpoint; empty means the public API.
func NewOpenAIStreamer(apiKey, baseURL string) *OpenAIStreamer {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIStreamer{client: openai.NewClient(opts...)}
}

func (o *OpenAIStreamer) StreamChat(ctx context.Context, req ChatRequest) (Stream, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	stream := o.client.Chat.Completions.NewStreaming(ctx, params)

	// The request is only sent on the first Next; pull one fragment so a
	// rejected request surfaces here instead of mid-stream.
	s := &openAIStream{stream: stream}
	if !s.advance() {
		if err := stream.Err(); err != nil {
			_ = stream.Close()
			return nil, fmt.Errorf("openai stream failed to open: %w", err)
		}
	}
	s.primed = true
	return s, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

type openAIStream struct {
	stream  *ssestream.Stream[openai.ChatCompletionChunk]
	current string
	primed  bool
	ended   bool
}

// advance moves to the next chunk that carries text.
func (s *openAIStream) advance() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			s.current = text
			return true
		}
	}
	s.ended = true
	s.current = ""
	return false
}

func (s *openAIStream) Next() bool {
	if s.primed {
		s.primed = false
		return !s.ended
	}
	if s.ended {
		return false
	}
	return s.advance()
}

func (s *openAIStream) Current() string {
	return s.current
}

func (s *openAIStream) Err() error {
	return s.stream.Err()
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}
