package repository

import (
	"context"
	"errors"
	"time"

	accountdomain "inboxpilot-backend/internal/account/domain"
	"inboxpilot-backend/pkg/utils/crypto"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository defines persistence for linked mailbox accounts
type AccountRepository interface {
	// FindOwned returns the account only when it belongs to userID.
	FindOwned(ctx context.Context, accountID, userID string) (*accountdomain.AccountCredentials, error)
	// Upsert inserts the account, or refreshes only its token when the id exists.
	Upsert(ctx context.Context, account *accountdomain.Account) error
	ListByUser(ctx context.Context, userID string) ([]accountdomain.Account, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db     *gorm.DB
	sealer *crypto.Sealer
}

// NewAccountRepository creates a new instance of accountRepository
func NewAccountRepository(db *gorm.DB, sealer *crypto.Sealer) AccountRepository {
	if sealer == nil {
		sealer = crypto.NewSealer("")
	}
	return &accountRepository{
		db:     db,
		sealer: sealer,
	}
}

func (r *accountRepository) FindOwned(ctx context.Context, accountID, userID string) (*accountdomain.AccountCredentials, error) {
	var account accountdomain.Account
	err := r.db.WithContext(ctx).
		Select("id", "email_address", "name", "token").
		Where("id = ? AND user_id = ?", accountID, userID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	token, err := r.sealer.Decrypt(account.Token)
	if err != nil {
		return nil, err
	}
	return &accountdomain.AccountCredentials{
		ID:           account.ID,
		EmailAddress: account.EmailAddress,
		Name:         account.Name,
		Token:        token,
	}, nil
}

func (r *accountRepository) Upsert(ctx context.Context, account *accountdomain.Account) error {
	sealed, err := r.sealer.Encrypt(account.Token)
	if err != nil {
		return err
	}

	now := time.Now()
	row := *account
	row.Token = sealed
	row.CreatedAt = now
	row.UpdatedAt = now
	if row.Provider == "" {
		row.Provider = accountdomain.ProviderAurinko
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&row).Error
}

func (r *accountRepository) ListByUser(ctx context.Context, userID string) ([]accountdomain.Account, error) {
	var accounts []accountdomain.Account
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "name", "email_address", "provider", "created_at", "updated_at").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&accountdomain.Account{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
