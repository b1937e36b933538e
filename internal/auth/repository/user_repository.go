package repository

import (
	"context"
	"errors"
	"time"

	authdomain "inboxpilot-backend/internal/auth/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence for users and their subscriptions
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	// Create inserts the user unless a row with the same id already exists,
	// then returns the stored row.
	Create(ctx context.Context, user *authdomain.User) (*authdomain.User, error)
	FindSubscription(ctx context.Context, userID string) (*authdomain.Subscription, error)
	SaveSubscription(ctx context.Context, sub *authdomain.Subscription) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *authdomain.User) (*authdomain.User, error) {
	if user.Role == "" {
		user.Role = authdomain.RoleUser
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	// Two first requests from the same identity may race here; the loser keeps the winner's row.
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, user.ID)
}

func (r *userRepository) FindSubscription(ctx context.Context, userID string) (*authdomain.Subscription, error) {
	var sub authdomain.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *userRepository) SaveSubscription(ctx context.Context, sub *authdomain.Subscription) error {
	sub.UpdatedAt = time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = sub.UpdatedAt
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "current_period_end", "updated_at"}),
	}).Create(sub).Error
}
