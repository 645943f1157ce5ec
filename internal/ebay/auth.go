package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rgoodwin/ebay-listing-migrator/internal/metrics"
)

// safetyMargin is subtracted from a token's nominal lifetime so a token is
// never used when it could expire mid-request.
const safetyMargin = 10 * time.Minute

// TokenStore persists a refresh token across runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
}

// CodePrompter obtains an authorization code from a human. It receives the
// authorization URL the user must visit and returns the code read back.
type CodePrompter func(authorizationURL string) (string, error)

// AuthError wraps any token exchange or refresh failure. It is fatal to any
// call depending on the token and is never retried automatically.
type AuthError struct {
	Env Environment
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Env, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// UserTokenProvider implements TokenProvider using the eBay OAuth2
// authorization code flow with refresh-token renewal. It caches one access
// token per instance and refreshes when the token is within the safety
// margin of expiry. One instance serves exactly one environment; tokens are
// never shared across environments. Thread-safe via mutex: at most one
// refresh is in flight at a time.
type UserTokenProvider struct {
	env          Environment
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       []string

	store  TokenStore
	prompt CodePrompter

	tokenURL     string
	authorizeURL string
	client       *http.Client

	mu           sync.Mutex
	refreshToken string
	token        string
	expiry       time.Time
	nowFunc      func() time.Time // for testing
}

// AuthOption configures the UserTokenProvider.
type AuthOption func(*UserTokenProvider)

// WithTokenURL overrides the environment's token endpoint.
func WithTokenURL(u string) AuthOption {
	return func(p *UserTokenProvider) {
		p.tokenURL = u
	}
}

// WithAuthorizeURL overrides the environment's consent endpoint.
func WithAuthorizeURL(u string) AuthOption {
	return func(p *UserTokenProvider) {
		p.authorizeURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) AuthOption {
	return func(p *UserTokenProvider) {
		p.client = c
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) AuthOption {
	return func(p *UserTokenProvider) {
		p.nowFunc = f
	}
}

// WithRefreshToken seeds the in-memory refresh token, taking precedence over
// the store.
func WithRefreshToken(token string) AuthOption {
	return func(p *UserTokenProvider) {
		p.refreshToken = token
	}
}

// NewUserTokenProvider creates a token provider for one environment. The
// store persists the refresh token between runs; prompt is consulted only
// when no refresh token can be found anywhere.
func NewUserTokenProvider(
	env Environment,
	clientID, clientSecret, redirectURI string,
	scopes []string,
	store TokenStore,
	prompt CodePrompter,
	opts ...AuthOption,
) *UserTokenProvider {
	p := &UserTokenProvider{
		env:          env,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		scopes:       scopes,
		store:        store,
		prompt:       prompt,
		tokenURL:     env.TokenURL(),
		authorizeURL: env.AuthorizeURL(),
		client:       &http.Client{Timeout: 10 * time.Second},
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type userTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Token returns a valid access token, acquiring or refreshing as needed.
// A cached token is returned unchanged while now < expiry; the stored expiry
// already has the safety margin discounted.
func (p *UserTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.nowFunc().Before(p.expiry) {
		return p.token, nil
	}

	token, err := p.acquireLocked(ctx)
	if err != nil {
		metrics.TokenRefreshFailuresTotal.WithLabelValues(string(p.env)).Inc()
		return "", &AuthError{Env: p.env, Err: err}
	}

	metrics.TokenRefreshesTotal.WithLabelValues(string(p.env)).Inc()
	return token, nil
}

// Env returns the environment this provider serves.
func (p *UserTokenProvider) Env() Environment {
	return p.env
}

// AuthorizationURL builds the consent URL the user must visit, embedding a
// freshly generated anti-forgery state token and the configured scopes.
func (p *UserTokenProvider) AuthorizationURL() string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", p.redirectURI)
	params.Set("scope", strings.Join(p.scopes, " "))
	params.Set("state", uuid.NewString())

	return p.authorizeURL + "?" + params.Encode()
}

// ForceInteractive discards any held refresh token and runs the interactive
// authorization flow, persisting the new refresh token. Used by the login
// command.
func (p *UserTokenProvider) ForceInteractive(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refreshToken = ""
	p.token = ""

	if err := p.authorizeInteractiveLocked(ctx); err != nil {
		return &AuthError{Env: p.env, Err: err}
	}
	return nil
}

// acquireLocked obtains an access token with no usable cached token.
// Acquisition order: in-memory refresh token, then the store, then the
// interactive flow. Callers hold p.mu.
func (p *UserTokenProvider) acquireLocked(ctx context.Context) (string, error) {
	if p.refreshToken == "" && p.store != nil {
		stored, err := p.store.Load()
		if err != nil {
			return "", fmt.Errorf("loading refresh token: %w", err)
		}
		p.refreshToken = stored
	}

	if p.refreshToken == "" {
		if err := p.authorizeInteractiveLocked(ctx); err != nil {
			return "", err
		}
	}

	return p.refreshLocked(ctx)
}

// authorizeInteractiveLocked runs the authorization code flow: the prompter
// shows the consent URL, collects the code, and the code is exchanged for a
// refresh token which is persisted for future runs.
func (p *UserTokenProvider) authorizeInteractiveLocked(ctx context.Context) error {
	if p.prompt == nil {
		return fmt.Errorf("no refresh token available and no authorization prompt configured")
	}

	code, err := p.prompt(p.AuthorizationURL())
	if err != nil {
		return fmt.Errorf("collecting authorization code: %w", err)
	}

	refresh, err := p.exchangeCode(ctx, code)
	if err != nil {
		return err
	}

	p.refreshToken = refresh

	if p.store != nil {
		if err := p.store.Save(refresh); err != nil {
			return fmt.Errorf("persisting refresh token: %w", err)
		}
	}
	return nil
}

// exchangeCode trades an authorization code for a refresh token.
func (p *UserTokenProvider) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {p.redirectURI},
	}

	resp, err := p.postTokenForm(ctx, form)
	if err != nil {
		return "", fmt.Errorf("exchanging authorization code: %w", err)
	}

	if resp.RefreshToken == "" {
		return "", fmt.Errorf("authorization code exchange returned no refresh token")
	}
	return resp.RefreshToken, nil
}

// refreshLocked exchanges the refresh token for an access token and computes
// the cached expiry as now + lifetime - safety margin. Callers hold p.mu.
func (p *UserTokenProvider) refreshLocked(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {p.refreshToken},
		"scope":         {strings.Join(p.scopes, " ")},
	}

	resp, err := p.postTokenForm(ctx, form)
	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}

	p.token = resp.AccessToken
	p.expiry = p.nowFunc().
		Add(time.Duration(resp.ExpiresIn) * time.Second).
		Add(-safetyMargin)

	return p.token, nil
}

func (p *UserTokenProvider) postTokenForm(
	ctx context.Context,
	form url.Values,
) (*userTokenResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	creds := base64.StdEncoding.EncodeToString(
		[]byte(p.clientID + ":" + p.clientSecret),
	)
	req.Header.Set("Authorization", "Basic "+creds)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tokenErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		return nil, fmt.Errorf(
			"token request failed (status %d): %s - %s",
			resp.StatusCode,
			errResp.Error,
			errResp.ErrorDescription,
		)
	}

	var tokenResp userTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	return &tokenResp, nil
}
