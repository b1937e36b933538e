package aurinko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	DefaultAPIURL = "https://api.aurinko.io/v1"

	ServiceGoogle    = "Google"
	ServiceOffice365 = "Office365"

	mailScopes = "Mail.Read Mail.ReadWrite Mail.Send Mail.Drafts Mail.All"
)

// Config holds the aggregator application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	ReturnURL    string
	Timeout      time.Duration
}

// Token is the result of a successful code exchange.
type Token struct {
	AccountID   int64  `json:"accountId"`
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	UserSession string `json:"userSession"`
}

// AccountIDString is the provider account id as stored locally.
func (t *Token) AccountIDString() string {
	return strconv.FormatInt(t.AccountID, 10)
}

// Profile is the mailbox owner as reported by the aggregator.
type Profile struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	ServiceType string `json:"serviceType"`
}

// Client talks to the aggregator on behalf of the application.
type Client struct {
	clientID     string
	clientSecret string
	returnURL    string
	apiURL       string
	endpoint     oauth2.Endpoint
	httpClient   *http.Client
}

func NewClient(cfg Config) *Client {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		returnURL:    cfg.ReturnURL,
		apiURL:       apiURL,
		endpoint: oauth2.Endpoint{
			AuthURL:  apiURL + "/auth/authorize",
			TokenURL: apiURL + "/auth/token",
		},
		httpClient: &http.Client{Timeout: timeout},
	}
}

// IsConfigured returns true if application credentials are present
func (c *Client) IsConfigured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// IsSupportedService reports whether serviceType can be linked.
func IsSupportedService(serviceType string) bool {
	return serviceType == ServiceGoogle || serviceType == ServiceOffice365
}

// AuthorizationURL builds the consent URL. It makes no network call.
func (c *Client) AuthorizationURL(serviceType string) (string, error) {
	if !IsSupportedService(serviceType) {
		return "", fmt.Errorf("unsupported service type: %s", serviceType)
	}

	params := url.Values{
		"clientId":     {c.clientID},
		"serviceType":  {serviceType},
		"scopes":       {mailScopes},
		"responseType": {"code"},
		"returnUrl":    {c.returnURL},
	}
	return c.endpoint.AuthURL + "?" + params.Encode(), nil
}

// ExchangeCode trades an authorization code for an account token.
// Provider failures are logged and reported as a nil token, not an error.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	if code == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.TokenURL+"/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("aurinko token exchange request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("body", string(body)).Msg("aurinko token exchange failed")
		return nil, nil
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		log.Warn().Err(err).Str("body", string(body)).Msg("aurinko token response not understood")
		return nil, nil
	}
	if token.AccessToken == "" || token.AccountID == 0 {
		log.Warn().Str("body", string(body)).Msg("aurinko token response is missing fields")
		return nil, nil
	}
	return &token, nil
}

// AccountDetails fetches the profile of the account behind accessToken.
func (c *Client) AccountDetails(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	if err := c.ForAccount(ctx, accessToken).do(ctx, http.MethodGet, "/account", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ForAccount returns a client authorized as a single linked account.
func (c *Client) ForAccount(ctx context.Context, accessToken string) *AccountClient {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return &AccountClient{
		apiURL:     c.apiURL,
		httpClient: oauth2.NewClient(ctx, src),
	}
}
