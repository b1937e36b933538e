package usecase

import (
	"context"

	accountdto "inboxpilot-backend/internal/account/dto"
	"inboxpilot-backend/internal/account/repository"
	authdomain "inboxpilot-backend/internal/auth/domain"
	authusecase "inboxpilot-backend/internal/auth/usecase"
	"inboxpilot-backend/pkg/aurinko"
)

// ProviderClient is the subset of the aggregator client the account flows use.
type ProviderClient interface {
	AuthorizationURL(serviceType string) (string, error)
	ExchangeCode(ctx context.Context, code string) (*aurinko.Token, error)
	AccountDetails(ctx context.Context, accessToken string) (*aurinko.Profile, error)
	ForAccount(ctx context.Context, accessToken string) *aurinko.AccountClient
}

// SyncDispatcher queues the initial mailbox sync without waiting for it.
type SyncDispatcher interface {
	Dispatch(accountID, userID string) bool
}

// AccountUsecase covers linking mailboxes and acting on linked ones.
type AccountUsecase interface {
	BuildAuthorizationURL(ctx context.Context, identity authdomain.Identity, serviceType string) (string, error)
	HandleCallback(ctx context.Context, identity authdomain.Identity, status, code string) error
	UpsertAccount(ctx context.Context, accountID, userID, token, email, name string) error

	GetAccounts(ctx context.Context, userID string) ([]accountdto.AccountResponse, error)
	// GetMyAccount returns nil when accountID is empty.
	GetMyAccount(ctx context.Context, userID, accountID string) (*accountdto.AccountResponse, error)

	SendEmail(ctx context.Context, userID string, req accountdto.SendEmailRequest) (*accountdto.SendEmailResponse, error)

	GetWebhooks(ctx context.Context, userID, accountID string) ([]aurinko.Webhook, error)
	CreateWebhook(ctx context.Context, userID, accountID, notificationURL string) (*aurinko.Webhook, error)
	DeleteWebhook(ctx context.Context, userID, accountID, webhookID string) error
}

// accountUsecase implements AccountUsecase interface
type accountUsecase struct {
	accountRepo repository.AccountRepository
	authUsecase authusecase.AuthUsecase
	guard       Guard
	provider    ProviderClient
	dispatcher  SyncDispatcher
}

// NewAccountUsecase creates a new instance of accountUsecase
func NewAccountUsecase(
	accountRepo repository.AccountRepository,
	authUsecase authusecase.AuthUsecase,
	guard Guard,
	provider ProviderClient,
	dispatcher SyncDispatcher,
) AccountUsecase {
	return &accountUsecase{
		accountRepo: accountRepo,
		authUsecase: authUsecase,
		guard:       guard,
		provider:    provider,
		dispatcher:  dispatcher,
	}
}

func (u *accountUsecase) GetAccounts(ctx context.Context, userID string) ([]accountdto.AccountResponse, error) {
	accounts, err := u.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]accountdto.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, accountdto.NewAccountResponse(account))
	}
	return resp, nil
}

func (u *accountUsecase) GetMyAccount(ctx context.Context, userID, accountID string) (*accountdto.AccountResponse, error) {
	if accountID == "" {
		return nil, nil
	}

	creds, err := u.guard.Authorize(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	return &accountdto.AccountResponse{
		ID:           creds.ID,
		EmailAddress: creds.EmailAddress,
		Name:         creds.Name,
	}, nil
}
