package usecase

import (
	"context"

	"inboxpilot-backend/internal/apperror"
	"inboxpilot-backend/pkg/ai"

	"github.com/rs/zerolog/log"
)

// Reply is a streamed answer. Fragments already returned by Delta are never
// retracted. When the stream ends cleanly the quota reservation is
// committed; when it fails or is closed early the reservation is released.
type Reply struct {
	ctx         context.Context
	stream      ai.Stream
	reservation *Reservation
	delta       string
	finished    bool
	err         error
}

func newReply(ctx context.Context, stream ai.Stream, reservation *Reservation) *Reply {
	return &Reply{
		ctx:         ctx,
		stream:      stream,
		reservation: reservation,
	}
}

// Next advances to the next fragment.
func (r *Reply) Next() bool {
	if r.finished {
		return false
	}
	if r.stream.Next() {
		r.delta = r.stream.Current()
		return true
	}
	r.finish(r.stream.Err(), false)
	return false
}

func (r *Reply) Delta() string {
	return r.delta
}

// Err is a generic ChatFailed error if the stream broke. Provider details
// are logged, never returned.
func (r *Reply) Err() error {
	return r.err
}

// Close ends the reply. Closing before the stream is exhausted releases the
// reservation. It is safe to call more than once.
func (r *Reply) Close() {
	if r.finished {
		return
	}
	r.finish(nil, true)
}

func (r *Reply) finish(streamErr error, abandoned bool) {
	r.finished = true
	r.delta = ""
	if err := r.stream.Close(); err != nil {
		log.Debug().Err(err).Msg("failed to close completion stream")
	}

	switch {
	case streamErr != nil:
		log.Error().Err(streamErr).Msg("completion stream failed")
		r.err = apperror.ChatFailed()
		if err := r.reservation.Release(r.ctx); err != nil {
			log.Error().Err(err).Msg("failed to release quota reservation")
		}
	case abandoned:
		if err := r.reservation.Release(r.ctx); err != nil {
			log.Error().Err(err).Msg("failed to release quota reservation")
		}
	default:
		if err := r.reservation.Commit(r.ctx); err != nil {
			log.Error().Err(err).Msg("failed to record assistant usage")
		}
	}
}
