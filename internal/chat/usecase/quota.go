package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"inboxpilot-backend/internal/apperror"
	chatdomain "inboxpilot-backend/internal/chat/domain"
	"inboxpilot-backend/internal/chat/repository"
)

// QuotaTracker enforces the daily free allowance of assistant answers.
type QuotaTracker interface {
	// Reserve takes a slot for one answer. Subscribed users always get one
	// and never touch the store.
	Reserve(ctx context.Context, userID string, subscribed bool) (*Reservation, error)
	Remaining(ctx context.Context, userID string) (int, error)
}

// quotaTracker implements QuotaTracker interface
type quotaTracker struct {
	repo      repository.InteractionRepository
	allowance int
	now       func() time.Time
}

// NewQuotaTracker creates a new instance of quotaTracker
func NewQuotaTracker(repo repository.InteractionRepository, allowance int) QuotaTracker {
	return &quotaTracker{
		repo:      repo,
		allowance: allowance,
		now:       time.Now,
	}
}

func (q *quotaTracker) today() string {
	return q.now().Format(chatdomain.DayLayout)
}

func (q *quotaTracker) Reserve(ctx context.Context, userID string, subscribed bool) (*Reservation, error) {
	if subscribed {
		return &Reservation{noop: true}, nil
	}

	day := q.today()
	ok, err := q.repo.Reserve(ctx, day, userID, q.allowance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.LimitReached()
	}
	return &Reservation{repo: q.repo, day: day, userID: userID}, nil
}

func (q *quotaTracker) Remaining(ctx context.Context, userID string) (int, error) {
	row, err := q.repo.Find(ctx, q.today(), userID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return q.allowance, nil
	}
	// In-flight answers already hold a slot.
	if remaining := q.allowance - row.Count - row.Pending; remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// Reservation is one pending answer. It is settled exactly once: the first
// Commit or Release wins and later calls do nothing. The day is fixed when
// the reservation is taken, so a stream crossing midnight settles on the
// day it started.
type Reservation struct {
	repo    repository.InteractionRepository
	day     string
	userID  string
	noop    bool
	settled atomic.Bool
}

// Commit counts the answer. It runs even if ctx was cancelled.
func (r *Reservation) Commit(ctx context.Context) error {
	if !r.settle() {
		return nil
	}
	return r.repo.Commit(context.WithoutCancel(ctx), r.day, r.userID)
}

// Release returns the slot without counting it.
func (r *Reservation) Release(ctx context.Context) error {
	if !r.settle() {
		return nil
	}
	return r.repo.Release(context.WithoutCancel(ctx), r.day, r.userID)
}

func (r *Reservation) settle() bool {
	if r == nil || r.noop {
		return false
	}
	return r.settled.CompareAndSwap(false, true)
}
