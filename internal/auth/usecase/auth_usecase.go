package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"inboxpilot-backend/internal/apperror"
	authdomain "inboxpilot-backend/internal/auth/domain"
	"inboxpilot-backend/internal/auth/repository"
	"inboxpilot-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

const unknownEmail = "unknown@example.com"

// AuthUsecase verifies identity tokens and owns the local user/subscription rows.
type AuthUsecase interface {
	ValidateToken(tokenString string) (*authdomain.Identity, error)
	IssueToken(identity authdomain.Identity, ttl time.Duration) (string, error)
	// EnsureUser returns the user row for identity, creating it on first use.
	EnsureUser(ctx context.Context, identity authdomain.Identity) (*authdomain.User, error)
	IsSubscribed(ctx context.Context, userID string) (bool, error)
	GrantSubscription(ctx context.Context, userID, status string, until time.Time) error
}

type identityClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	config   *config.Config
	now      func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		config:   cfg,
		now:      time.Now,
	}
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if u.config.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(u.config.JWTIssuer))
	}

	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, apperror.Unauthorized()
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, apperror.Unauthorized()
	}

	return &authdomain.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// IssueToken signs an identity token the same way the auth provider does.
// Used by the CLI for local development and by tests.
func (u *authUsecase) IssueToken(identity authdomain.Identity, ttl time.Duration) (string, error) {
	if identity.UserID == "" {
		return "", errors.New("identity without user id")
	}
	now := u.now()
	claims := identityClaims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    u.config.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) EnsureUser(ctx context.Context, identity authdomain.Identity) (*authdomain.User, error) {
	if identity.UserID == "" {
		return nil, apperror.Unauthorized()
	}

	user, err := u.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	email := identity.Email
	if email == "" {
		email = unknownEmail
	}
	return u.userRepo.Create(ctx, &authdomain.User{
		ID:           identity.UserID,
		EmailAddress: email,
		Role:         authdomain.RoleUser,
	})
}

func (u *authUsecase) IsSubscribed(ctx context.Context, userID string) (bool, error) {
	sub, err := u.userRepo.FindSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	return sub.Active(u.now()), nil
}

func (u *authUsecase) GrantSubscription(ctx context.Context, userID, status string, until time.Time) error {
	if userID == "" {
		return apperror.ValidationFailed("user id is required")
	}
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("user", userID)
	}
	return u.userRepo.SaveSubscription(ctx, &authdomain.Subscription{
		UserID:           userID,
		Status:           status,
		CurrentPeriodEnd: until,
	})
}
