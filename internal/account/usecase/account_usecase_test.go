package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	accountdomain "inboxpilot-backend/internal/account/domain"
	accountdto "inboxpilot-backend/internal/account/dto"
	"inboxpilot-backend/internal/account/repository"
	"inboxpilot-backend/internal/apperror"
	authdomain "inboxpilot-backend/internal/auth/domain"
	authrepo "inboxpilot-backend/internal/auth/repository"
	authusecase "inboxpilot-backend/internal/auth/usecase"
	"inboxpilot-backend/internal/testutil"
	"inboxpilot-backend/pkg/aurinko"
	"inboxpilot-backend/pkg/config"
	"inboxpilot-backend/pkg/utils/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	calls [][2]string
}

func (d *recordingDispatcher) Dispatch(accountID, userID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, [2]string{accountID, userID})
	return true
}

type fixture struct {
	db         *gorm.DB
	uc         AccountUsecase
	auth       authusecase.AuthUsecase
	repo       repository.AccountRepository
	dispatcher *recordingDispatcher
	hits       *int32
	lastPath   atomic.Value
}

// newFixture wires the usecase against sqlite and a fake aggregator that
// accepts code "good" and serves account 777 for token "tok".
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{hits: new(int32)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(f.hits, 1)
		f.lastPath.Store(r.Method + " " + r.URL.Path)
		switch {
		case r.URL.Path == "/auth/token/good":
			_, _ = w.Write([]byte(`{"accountId":777,"accessToken":"tok","userId":"x","userSession":"y"}`))
		case r.URL.Path == "/auth/token/rotated":
			_, _ = w.Write([]byte(`{"accountId":777,"accessToken":"tok-2","userId":"x","userSession":"y"}`))
		case r.URL.Path == "/account":
			_, _ = w.Write([]byte(`{"id":777,"email":"ada@example.com","name":"Ada"}`))
		case r.URL.Path == "/email/messages":
			var msg aurinko.OutgoingMessage
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
			_, _ = w.Write([]byte(`{"id":"sent-1"}`))
		case r.URL.Path == "/subscriptions" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"records":[],"totalSize":0,"done":true}`))
		case r.URL.Path == "/subscriptions" && r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"id":5,"resource":"/email/messages","notificationUrl":"https://hooks.example.com","active":true}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)

	f.db = testutil.NewTestDB(t, &authdomain.User{}, &authdomain.Subscription{}, &accountdomain.Account{})
	f.auth = authusecase.NewAuthUsecase(authrepo.NewUserRepository(f.db), &config.Config{JWTSecret: "s"})
	f.repo = repository.NewAccountRepository(f.db, crypto.NewSealer("k"))
	f.dispatcher = &recordingDispatcher{}

	client := aurinko.NewClient(aurinko.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		APIURL:       srv.URL,
		ReturnURL:    "http://localhost:3000/api/aurinko/callback",
	})
	f.uc = NewAccountUsecase(f.repo, f.auth, NewGuard(f.repo), client, f.dispatcher)
	return f
}

func (f *fixture) link(t *testing.T, accountID, userID string) {
	t.Helper()
	require.NoError(t, f.uc.UpsertAccount(context.Background(), accountID, userID, "tok", userID+"@example.com", userID))
}

func TestUpsertAccountIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.uc.UpsertAccount(ctx, "acc-1", "user-1", "token-a", "first@example.com", "First"))
	require.NoError(t, f.uc.UpsertAccount(ctx, "acc-1", "user-1", "token-b", "second@example.com", "Second"))

	var count int64
	require.NoError(t, f.db.Model(&accountdomain.Account{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored accountdomain.Account
	require.NoError(t, f.db.First(&stored, "id = ?", "acc-1").Error)
	assert.Equal(t, "first@example.com", stored.EmailAddress)
	assert.Equal(t, "First", stored.Name)

	creds, err := f.repo.FindOwned(ctx, "acc-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "token-b", creds.Token)
}

func TestBuildAuthorizationURLTierLimits(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		subscribed bool
		linked     int
		wantErr    bool
	}{
		{name: "free user without accounts", role: authdomain.RoleUser, linked: 0},
		{name: "free user at limit", role: authdomain.RoleUser, linked: config.FreeAccountsPerUser, wantErr: true},
		{name: "pro user below limit", role: authdomain.RoleUser, subscribed: true, linked: config.ProAccountsPerUser - 1},
		{name: "pro user at limit", role: authdomain.RoleUser, subscribed: true, linked: config.ProAccountsPerUser, wantErr: true},
		{name: "admin is not capped", role: authdomain.RoleAdmin, linked: config.ProAccountsPerUser + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			require.NoError(t, f.db.Create(&authdomain.User{ID: "user-1", EmailAddress: "u@example.com", Role: tt.role}).Error)
			if tt.subscribed {
				require.NoError(t, f.auth.GrantSubscription(ctx, "user-1", "active", time.Now().Add(time.Hour)))
			}
			for i := 0; i < tt.linked; i++ {
				f.link(t, "acc-"+string(rune('a'+i)), "user-1")
			}

			url, err := f.uc.BuildAuthorizationURL(ctx, authdomain.Identity{UserID: "user-1"}, aurinko.ServiceGoogle)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrQuotaExceeded)
				assert.Empty(t, url)
			} else {
				require.NoError(t, err)
				assert.Contains(t, url, "/auth/authorize?")
			}
			assert.Equal(t, int32(0), atomic.LoadInt32(f.hits))
		})
	}
}

func TestBuildAuthorizationURLCreatesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.BuildAuthorizationURL(ctx, authdomain.Identity{UserID: "new-user"}, "Yahoo")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.uc.BuildAuthorizationURL(ctx, authdomain.Identity{UserID: "new-user"}, aurinko.ServiceOffice365)
	require.NoError(t, err)

	var user authdomain.User
	require.NoError(t, f.db.First(&user, "id = ?", "new-user").Error)
	assert.Equal(t, "unknown@example.com", user.EmailAddress)
	assert.Equal(t, authdomain.RoleUser, user.Role)
}

func TestHandleCallback(t *testing.T) {
	identity := authdomain.Identity{UserID: "user-1"}

	t.Run("links new account and requests sync", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.uc.HandleCallback(context.Background(), identity, "success", "good"))

		var stored accountdomain.Account
		require.NoError(t, f.db.First(&stored, "id = ?", "777").Error)
		assert.Equal(t, "user-1", stored.UserID)
		assert.Equal(t, "ada@example.com", stored.EmailAddress)
		assert.Equal(t, [][2]string{{"777", "user-1"}}, f.dispatcher.calls)
	})

	t.Run("relink refreshes token only", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.uc.HandleCallback(ctx, identity, "success", "good"))
		require.NoError(t, f.uc.HandleCallback(ctx, identity, "success", "rotated"))

		creds, err := f.repo.FindOwned(ctx, "777", "user-1")
		require.NoError(t, err)
		assert.Equal(t, "tok-2", creds.Token)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name   string
			status string
			code   string
			want   error
		}{
			{name: "denied", status: "error", code: "good", want: apperror.ErrConnectionFailed},
			{name: "missing code", status: "success", code: "", want: apperror.ErrValidation},
			{name: "exchange failed", status: "success", code: "bad", want: apperror.ErrTokenExchange},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				err := f.uc.HandleCallback(context.Background(), identity, tt.status, tt.code)
				assert.ErrorIs(t, err, tt.want)
				assert.Empty(t, f.dispatcher.calls)
			})
		}
	})
}

func TestGetMyAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.link(t, "acc-1", "user-1")

	account, err := f.uc.GetMyAccount(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Nil(t, account)

	account, err = f.uc.GetMyAccount(ctx, "user-1", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1@example.com", account.EmailAddress)

	_, err = f.uc.GetMyAccount(ctx, "user-2", "acc-1")
	assert.ErrorIs(t, err, apperror.ErrInvalidAccount)

	accounts, err := f.uc.GetAccounts(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "acc-1", accounts[0].ID)
}

func TestSendEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.link(t, "acc-1", "user-1")

	_, err := f.uc.SendEmail(ctx, "user-1", accountdto.SendEmailRequest{AccountID: "acc-1", Subject: "no one"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.uc.SendEmail(ctx, "user-2", accountdto.SendEmailRequest{
		AccountID: "acc-1",
		To:        []accountdto.EmailAddress{{Address: "bob@example.com"}},
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidAccount)
	assert.Equal(t, int32(0), atomic.LoadInt32(f.hits))

	sent, err := f.uc.SendEmail(ctx, "user-1", accountdto.SendEmailRequest{
		AccountID: "acc-1",
		To:        []accountdto.EmailAddress{{Address: "bob@example.com"}},
		Subject:   "Hello",
		Body:      "<p>Hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "sent-1", sent.ID)
	assert.Equal(t, "POST /email/messages", f.lastPath.Load())
}

func TestWebhooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.link(t, "acc-1", "user-1")

	hooks, err := f.uc.GetWebhooks(ctx, "user-1", "acc-1")
	require.NoError(t, err)
	assert.Empty(t, hooks)

	hook, err := f.uc.CreateWebhook(ctx, "user-1", "acc-1", "https://hooks.example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(5), hook.ID)

	err = f.uc.DeleteWebhook(ctx, "user-1", "acc-1", "404")
	assert.ErrorIs(t, err, apperror.ErrUpstream)

	err = f.uc.DeleteWebhook(ctx, "user-1", "acc-1", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.uc.GetWebhooks(ctx, "user-2", "acc-1")
	assert.ErrorIs(t, err, apperror.ErrInvalidAccount)
}
