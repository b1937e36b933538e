package repository

import (
	"context"

	emaildomain "inboxpilot-backend/internal/email/domain"

	"gorm.io/gorm"
)

// ThreadRepository defines read access to synced threads
type ThreadRepository interface {
	Count(ctx context.Context, accountID, tab string) (int64, error)
	List(ctx context.Context, accountID, tab string, done bool, limit int) ([]emaildomain.Thread, error)
}

// threadRepository implements ThreadRepository interface
type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new instance of threadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{
		db: db,
	}
}

// tabColumn maps a mailbox tab to its status column. Unknown tabs match everything.
func tabColumn(tab string) string {
	switch tab {
	case emaildomain.TabInbox:
		return "inbox_status"
	case emaildomain.TabSent:
		return "sent_status"
	case emaildomain.TabDrafts:
		return "draft_status"
	}
	return ""
}

func (r *threadRepository) scoped(ctx context.Context, accountID, tab string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&emaildomain.Thread{}).Where("account_id = ?", accountID)
	if col := tabColumn(tab); col != "" {
		q = q.Where(col+" = ?", true)
	}
	return q
}

func (r *threadRepository) Count(ctx context.Context, accountID, tab string) (int64, error) {
	var count int64
	err := r.scoped(ctx, accountID, tab).Count(&count).Error
	return count, err
}

func (r *threadRepository) List(ctx context.Context, accountID, tab string, done bool, limit int) ([]emaildomain.Thread, error) {
	var threads []emaildomain.Thread
	err := r.scoped(ctx, accountID, tab).
		Where("done = ?", done).
		Preload("Emails", func(db *gorm.DB) *gorm.DB {
			return db.Order("sent_at ASC")
		}).
		Order("last_message_date DESC").
		Limit(limit).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}

	for i := range threads {
		if threads[i].Emails == nil {
			threads[i].Emails = []emaildomain.Email{}
		}
	}
	return threads, nil
}
