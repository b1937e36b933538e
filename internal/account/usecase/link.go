package usecase

import (
	"context"
	"strings"

	accountdomain "inboxpilot-backend/internal/account/domain"
	"inboxpilot-backend/internal/apperror"
	authdomain "inboxpilot-backend/internal/auth/domain"
	"inboxpilot-backend/pkg/aurinko"
	"inboxpilot-backend/pkg/config"

	"github.com/rs/zerolog/log"
)

const callbackSuccess = "success"

func (u *accountUsecase) BuildAuthorizationURL(ctx context.Context, identity authdomain.Identity, serviceType string) (string, error) {
	if !aurinko.IsSupportedService(serviceType) {
		return "", apperror.ValidationFailed("serviceType must be Google or Office365")
	}

	user, err := u.authUsecase.EnsureUser(ctx, identity)
	if err != nil {
		return "", err
	}

	if user.Role == authdomain.RoleUser {
		count, err := u.accountRepo.CountByUser(ctx, user.ID)
		if err != nil {
			return "", err
		}
		subscribed, err := u.authUsecase.IsSubscribed(ctx, user.ID)
		if err != nil {
			return "", err
		}

		if subscribed && count >= config.ProAccountsPerUser {
			return "", apperror.QuotaExceeded("pro")
		}
		if !subscribed && count >= config.FreeAccountsPerUser {
			return "", apperror.QuotaExceeded("free")
		}
	}

	return u.provider.AuthorizationURL(serviceType)
}

func (u *accountUsecase) HandleCallback(ctx context.Context, identity authdomain.Identity, status, code string) error {
	if identity.UserID == "" {
		return apperror.Unauthorized()
	}
	if status != callbackSuccess {
		log.Warn().Str("user_id", identity.UserID).Str("status", status).Msg("account connection was not granted")
		return apperror.ConnectionFailed()
	}
	if strings.TrimSpace(code) == "" {
		return apperror.ValidationFailed("code is required")
	}

	token, err := u.provider.ExchangeCode(ctx, code)
	if err != nil {
		return apperror.Upstream("aurinko", err)
	}
	if token == nil {
		return apperror.TokenExchangeFailed()
	}

	profile, err := u.provider.AccountDetails(ctx, token.AccessToken)
	if err != nil {
		return apperror.Upstream("aurinko", err)
	}

	accountID := token.AccountIDString()
	if err := u.UpsertAccount(ctx, accountID, identity.UserID, token.AccessToken, profile.Email, profile.Name); err != nil {
		return err
	}
	log.Info().Str("account_id", accountID).Str("user_id", identity.UserID).Msg("account linked")

	if u.dispatcher != nil {
		u.dispatcher.Dispatch(accountID, identity.UserID)
	}
	return nil
}

func (u *accountUsecase) UpsertAccount(ctx context.Context, accountID, userID, token, email, name string) error {
	if accountID == "" || userID == "" {
		return apperror.ValidationFailed("account id and user id are required")
	}
	return u.accountRepo.Upsert(ctx, &accountdomain.Account{
		ID:           accountID,
		UserID:       userID,
		Token:        token,
		EmailAddress: email,
		Name:         name,
		Provider:     accountdomain.ProviderAurinko,
	})
}
