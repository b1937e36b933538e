package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog/log"
)

// FallbackStreamer opens the primary provider and switches to the secondary
// only when the primary is unreachable or out of quota. The switch happens
// before any fragment is produced; a stream that fails midway is not resumed.
type FallbackStreamer struct {
	primary   ChatStreamer
	secondary ChatStreamer
}

// NewFallbackStreamer creates a new fallback streamer with both providers
func NewFallbackStreamer(primary, secondary ChatStreamer) *FallbackStreamer {
	return &FallbackStreamer{
		primary:   primary,
		secondary: secondary,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"dial tcp",
	} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"insufficient_quota",
	} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

func (f *FallbackStreamer) StreamChat(ctx context.Context, req ChatRequest) (Stream, error) {
	if f.primary != nil {
		stream, err := f.primary.StreamChat(ctx, req)
		if err == nil {
			return stream, nil
		}
		if f.secondary == nil || !(isConnectionError(err) || isQuotaError(err)) {
			return nil, err
		}
		log.Warn().Err(err).Msg("primary AI provider unavailable, falling back")
	}

	if f.secondary != nil {
		return f.secondary.StreamChat(ctx, req)
	}
	return nil, fmt.Errorf("no AI provider available")
}
