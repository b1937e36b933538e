package usecase

import (
	"context"
	"testing"
	"time"

	"inboxpilot-backend/internal/apperror"
	authdomain "inboxpilot-backend/internal/auth/domain"
	"inboxpilot-backend/internal/auth/repository"
	"inboxpilot-backend/internal/testutil"
	"inboxpilot-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUsecase(t *testing.T) (AuthUsecase, repository.UserRepository) {
	db := testutil.NewTestDB(t, &authdomain.User{}, &authdomain.Subscription{})
	repo := repository.NewUserRepository(db)
	cfg := &config.Config{JWTSecret: "test-secret", JWTIssuer: "https://auth.example.com"}
	return NewAuthUsecase(repo, cfg), repo
}

func TestIssueAndValidateToken(t *testing.T) {
	uc, _ := newTestUsecase(t)

	token, err := uc.IssueToken(authdomain.Identity{UserID: "user_1", Email: "a@example.com"}, time.Hour)
	require.NoError(t, err)

	identity, err := uc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", identity.UserID)
	assert.Equal(t, "a@example.com", identity.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	uc, _ := newTestUsecase(t)

	expired, err := uc.IssueToken(authdomain.Identity{UserID: "user_1"}, -time.Minute)
	require.NoError(t, err)

	otherIssuer, err := NewAuthUsecase(nil, &config.Config{JWTSecret: "test-secret", JWTIssuer: "https://evil.example.com"}).
		IssueToken(authdomain.Identity{UserID: "user_1"}, time.Hour)
	require.NoError(t, err)

	otherSecret, err := NewAuthUsecase(nil, &config.Config{JWTSecret: "other", JWTIssuer: "https://auth.example.com"}).
		IssueToken(authdomain.Identity{UserID: "user_1"}, time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "https://auth.example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"issuer":       otherIssuer,
		"secret":       otherSecret,
		"no subject":   noSubject,
		"garbage":      "not-a-jwt",
		"empty string": "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.ValidateToken(token)
			assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		})
	}
}

func TestEnsureUserCreatesOnce(t *testing.T) {
	uc, repo := newTestUsecase(t)
	ctx := context.Background()

	user, err := uc.EnsureUser(ctx, authdomain.Identity{UserID: "user_1"})
	require.NoError(t, err)
	assert.Equal(t, "unknown@example.com", user.EmailAddress)
	assert.Equal(t, authdomain.RoleUser, user.Role)

	again, err := uc.EnsureUser(ctx, authdomain.Identity{UserID: "user_1", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "unknown@example.com", again.EmailAddress)

	stored, err := repo.FindByID(ctx, "user_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestEnsureUserRequiresIdentity(t *testing.T) {
	uc, _ := newTestUsecase(t)

	_, err := uc.EnsureUser(context.Background(), authdomain.Identity{})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestIsSubscribed(t *testing.T) {
	uc, _ := newTestUsecase(t)
	ctx := context.Background()

	_, err := uc.EnsureUser(ctx, authdomain.Identity{UserID: "user_1"})
	require.NoError(t, err)

	subscribed, err := uc.IsSubscribed(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, subscribed)

	require.NoError(t, uc.GrantSubscription(ctx, "user_1", "active", time.Now().Add(24*time.Hour)))
	subscribed, err = uc.IsSubscribed(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, subscribed)

	require.NoError(t, uc.GrantSubscription(ctx, "user_1", "canceled", time.Now().Add(24*time.Hour)))
	subscribed, err = uc.IsSubscribed(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, subscribed)

	require.NoError(t, uc.GrantSubscription(ctx, "user_1", "active", time.Now().Add(-time.Hour)))
	subscribed, err = uc.IsSubscribed(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, subscribed)
}

func TestGrantSubscriptionUnknownUser(t *testing.T) {
	uc, _ := newTestUsecase(t)
	ctx := context.Background()

	err := uc.GrantSubscription(ctx, "ghost", "active", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "user not found with id ghost")

	subscribed, err := uc.IsSubscribed(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, subscribed)
}
