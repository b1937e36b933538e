package repository

import (
	"context"
	"errors"
	"time"

	chatdomain "inboxpilot-backend/internal/chat/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InteractionRepository defines persistence for daily assistant usage.
// Every method is a single statement, so concurrent callers never lose updates.
type InteractionRepository interface {
	Find(ctx context.Context, day, userID string) (*chatdomain.ChatbotInteraction, error)
	// Reserve takes one pending slot if count+pending is below allowance,
	// creating the row first if needed. It reports whether a slot was taken.
	Reserve(ctx context.Context, day, userID string, allowance int) (bool, error)
	// Commit turns one pending slot into a counted answer.
	Commit(ctx context.Context, day, userID string) error
	// Release gives one pending slot back.
	Release(ctx context.Context, day, userID string) error
}

// interactionRepository implements InteractionRepository interface
type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new instance of interactionRepository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{
		db: db,
	}
}

func (r *interactionRepository) Find(ctx context.Context, day, userID string) (*chatdomain.ChatbotInteraction, error) {
	var row chatdomain.ChatbotInteraction
	err := r.db.WithContext(ctx).Where("day = ? AND user_id = ?", day, userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *interactionRepository) ensure(ctx context.Context, day, userID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&chatdomain.ChatbotInteraction{
		Day:       day,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}

func (r *interactionRepository) Reserve(ctx context.Context, day, userID string, allowance int) (bool, error) {
	if err := r.ensure(ctx, day, userID); err != nil {
		return false, err
	}

	res := r.db.WithContext(ctx).Model(&chatdomain.ChatbotInteraction{}).
		Where("day = ? AND user_id = ? AND count + pending < ?", day, userID, allowance).
		Updates(map[string]interface{}{
			"pending":    gorm.Expr("pending + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *interactionRepository) Commit(ctx context.Context, day, userID string) error {
	return r.db.WithContext(ctx).Model(&chatdomain.ChatbotInteraction{}).
		Where("day = ? AND user_id = ? AND pending > 0", day, userID).
		Updates(map[string]interface{}{
			"count":      gorm.Expr("count + 1"),
			"pending":    gorm.Expr("pending - 1"),
			"updated_at": time.Now(),
		}).Error
}

func (r *interactionRepository) Release(ctx context.Context, day, userID string) error {
	return r.db.WithContext(ctx).Model(&chatdomain.ChatbotInteraction{}).
		Where("day = ? AND user_id = ? AND pending > 0", day, userID).
		Updates(map[string]interface{}{
			"pending":    gorm.Expr("pending - 1"),
			"updated_at": time.Now(),
		}).Error
}
