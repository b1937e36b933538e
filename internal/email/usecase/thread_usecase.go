package usecase

import (
	"context"

	accountusecase "inboxpilot-backend/internal/account/usecase"
	emaildomain "inboxpilot-backend/internal/email/domain"
	"inboxpilot-backend/internal/email/repository"
	"inboxpilot-backend/pkg/config"
)

// ThreadUsecase lists the threads of an account the caller owns.
type ThreadUsecase interface {
	GetNumThreads(ctx context.Context, userID, accountID, tab string) (int64, error)
	GetThreads(ctx context.Context, userID, accountID, tab string, done bool) ([]emaildomain.Thread, error)
}

// threadUsecase implements ThreadUsecase interface
type threadUsecase struct {
	threadRepo repository.ThreadRepository
	guard      accountusecase.Guard
}

// NewThreadUsecase creates a new instance of threadUsecase
func NewThreadUsecase(threadRepo repository.ThreadRepository, guard accountusecase.Guard) ThreadUsecase {
	return &threadUsecase{
		threadRepo: threadRepo,
		guard:      guard,
	}
}

func (u *threadUsecase) GetNumThreads(ctx context.Context, userID, accountID, tab string) (int64, error) {
	if _, err := u.guard.Authorize(ctx, accountID, userID); err != nil {
		return 0, err
	}
	return u.threadRepo.Count(ctx, accountID, tab)
}

// GetThreads returns at most one page of threads, newest first. There is no offset.
func (u *threadUsecase) GetThreads(ctx context.Context, userID, accountID, tab string, done bool) ([]emaildomain.Thread, error) {
	if _, err := u.guard.Authorize(ctx, accountID, userID); err != nil {
		return nil, err
	}
	return u.threadRepo.List(ctx, accountID, tab, done, config.ThreadPageSize)
}
