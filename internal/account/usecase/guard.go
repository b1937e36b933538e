package usecase

import (
	"context"
	"strings"

	accountdomain "inboxpilot-backend/internal/account/domain"
	"inboxpilot-backend/internal/account/repository"
	"inboxpilot-backend/internal/apperror"
)

// Guard checks that an account belongs to the calling user before any read
// or provider call is made on its behalf.
type Guard interface {
	Authorize(ctx context.Context, accountID, userID string) (*accountdomain.AccountCredentials, error)
}

// guard implements Guard interface
type guard struct {
	accountRepo repository.AccountRepository
}

// NewGuard creates a new instance of guard
func NewGuard(accountRepo repository.AccountRepository) Guard {
	return &guard{
		accountRepo: accountRepo,
	}
}

// Authorize hits the store on every call; ownership is never cached.
func (g *guard) Authorize(ctx context.Context, accountID, userID string) (*accountdomain.AccountCredentials, error) {
	if strings.TrimSpace(accountID) == "" || strings.TrimSpace(userID) == "" {
		return nil, apperror.InvalidAccount()
	}

	creds, err := g.accountRepo.FindOwned(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, apperror.InvalidAccount()
	}
	return creds, nil
}
