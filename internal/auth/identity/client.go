package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/launchpad/internal/auth/domain"
	"github.com/smallbiznis/launchpad/internal/config"
	obstracing "github.com/smallbiznis/launchpad/internal/observability/tracing"
	"go.uber.org/zap"
)

const (
	apiPrefix      = "/auth/v1"
	maxBodyBytes   = 1 << 20
	defaultTimeout = 10 * time.Second
)

var supportedProviders = map[string]struct{}{
	"github":    {},
	"google":    {},
	"gitlab":    {},
	"bitbucket": {},
	"azure":     {},
	"discord":   {},
}

// Client talks to a GoTrue-compatible auth API.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	log        *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) domain.IdentityProvider {
	return NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, obstracing.WrapHTTPClient(&http.Client{Timeout: defaultTimeout}), log)
}

func NewClient(baseURL, anonKey string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		anonKey:    strings.TrimSpace(anonKey),
		httpClient: httpClient,
		log:        log.Named("auth.identity"),
	}
}

type userPayload struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type sessionPayload struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	User         *userPayload `json:"user"`
}

type apiError struct {
	Status           int
	Code             string `json:"error_code"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e *apiError) message() string {
	for _, candidate := range []string{e.Msg, e.ErrorDescription, e.ErrorName} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return http.StatusText(e.Status)
}

func (c *Client) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if strings.TrimSpace(name) != "" {
		body["data"] = map[string]any{"full_name": name}
	}

	// Returns a bare user when confirmation is required, a session otherwise.
	var resp struct {
		userPayload
		User *userPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", nil, "", body, &resp); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && isUserExists(apiErr) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	u := resp.userPayload
	if resp.User != nil {
		u = *resp.User
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: sign-up response without user", domain.ErrUpstream)
	}
	user := toUser(u)
	return &user, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	return c.token(ctx, "password", map[string]any{"email": email, "password": password}, domain.ErrInvalidCredentials)
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return c.token(ctx, "refresh_token", map[string]any{"refresh_token": refreshToken}, domain.ErrInvalidToken)
}

func (c *Client) ExchangeCode(ctx context.Context, authCode, codeVerifier string) (*domain.Session, error) {
	return c.token(ctx, "pkce", map[string]any{"auth_code": authCode, "code_verifier": codeVerifier}, domain.ErrInvalidCode)
}

func (c *Client) VerifyOTP(ctx context.Context, tokenHash, otpType string) (*domain.Session, error) {
	var resp sessionPayload
	err := c.do(ctx, http.MethodPost, "/verify", nil, "", map[string]any{
		"token_hash": tokenHash,
		"type":       otpType,
	}, &resp)
	if err != nil {
		return nil, mapClientError(err, domain.ErrInvalidCode)
	}
	return toSession(resp)
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/logout", nil, accessToken, nil, nil)
	if err != nil {
		var apiErr *apiError
		// An already-invalid token is a completed sign-out.
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden || apiErr.Status == http.StatusNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error) {
	if c.baseURL == "" {
		return "", domain.ErrNotConfigured
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if _, ok := supportedProviders[provider]; !ok {
		return "", domain.ErrInvalidProvider
	}

	query := url.Values{}
	query.Set("provider", provider)
	query.Set("redirect_to", redirectTo)
	if codeChallenge != "" {
		query.Set("code_challenge", codeChallenge)
		query.Set("code_challenge_method", "s256")
	}
	return c.baseURL + apiPrefix + "/authorize?" + query.Encode(), nil
}

func (c *Client) token(ctx context.Context, grantType string, body map[string]any, rejected error) (*domain.Session, error) {
	var resp sessionPayload
	query := url.Values{"grant_type": []string{grantType}}
	if err := c.do(ctx, http.MethodPost, "/token", query, "", body, &resp); err != nil {
		return nil, mapClientError(err, rejected)
	}
	return toSession(resp)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, body any, out any) error {
	if c.baseURL == "" || c.anonKey == "" {
		return domain.ErrNotConfigured
	}

	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(payload, apiErr)
		c.log.Warn("identity provider request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error_code", apiErr.Code),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	return nil
}

func (e *apiError) Error() string {
	return fmt.Sprintf("identity provider status %d: %s", e.Status, e.message())
}

// mapClientError turns a 4xx rejection into rejected and everything else
// into an upstream failure.
func mapClientError(err error, rejected error) error {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", rejected, apiErr.message())
	}
	return fmt.Errorf("%w: %s", domain.ErrUpstream, apiErr.Error())
}

func isUserExists(err *apiError) bool {
	if err.Code == "user_already_exists" || err.Code == "email_exists" {
		return true
	}
	return strings.Contains(strings.ToLower(err.message()), "already registered")
}

func toSession(resp sessionPayload) (*domain.Session, error) {
	if strings.TrimSpace(resp.AccessToken) == "" {
		return nil, fmt.Errorf("%w: response without access token", domain.ErrUpstream)
	}
	expiresAt := time.Unix(resp.ExpiresAt, 0).UTC()
	if resp.ExpiresAt == 0 {
		expiresAt = time.Now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	session := &domain.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
	}
	if resp.User != nil {
		session.User = toUser(*resp.User)
	}
	return session, nil
}

func toUser(u userPayload) domain.User {
	user := domain.User{ID: u.ID, Email: u.Email}
	for _, key := range []string{"full_name", "name", "user_name"} {
		if v, ok := u.UserMetadata[key].(string); ok && strings.TrimSpace(v) != "" {
			user.Name = v
			break
		}
	}
	return user
}
