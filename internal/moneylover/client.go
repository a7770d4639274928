// Package moneylover is the HTTP client for the MoneyLover REST API: the
// two-step credential exchange plus the authenticated operations exposed
// through the MCP tools.
package moneylover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the MoneyLover web API root.
	DefaultBaseURL = "https://web.moneylover.me/api"

	// DefaultTokenURL is the OAuth-style token endpoint used by the
	// second login step.
	DefaultTokenURL = "https://oauth.moneylover.me/token"

	// authScheme is MoneyLover's authorization header scheme for
	// authenticated API calls.
	authScheme = "AuthJWT"
)

// Client calls the MoneyLover API. Tokens are supplied per call; the client
// itself is stateless and safe for concurrent use.
type Client struct {
	baseURL    string
	tokenURL   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTokenURL overrides the token endpoint (used by tests).
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		c.tokenURL = tokenURL
	}
}

// WithHTTPClient overrides the underlying HTTP client, e.g. to inject a
// recording transport in tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a Client for the MoneyLover API.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		tokenURL: DefaultTokenURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// loginURLResponse is step one of the credential exchange: a short-lived
// request token plus a login URL whose query string carries the client
// parameter required by the token endpoint.
type loginURLResponse struct {
	Error int    `json:"error"`
	Msg   string `json:"msg"`
	Data  struct {
		RequestToken string `json:"request_token"`
		LoginURL     string `json:"login_url"`
	} `json:"data"`
}

// tokenResponse is step two of the credential exchange.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ExchangeCredentials performs the two-step login: obtain a request token
// and client parameter, then exchange them with the email/password for an
// access token.
func (c *Client) ExchangeCredentials(ctx context.Context, email, password string) (string, error) {
	requestToken, clientParam, err := c.requestLoginGrant(ctx)
	if err != nil {
		return "", fmt.Errorf("requesting login grant: %w", err)
	}

	token, err := c.exchangeLoginGrant(ctx, requestToken, clientParam, email, password)
	if err != nil {
		return "", fmt.Errorf("exchanging login grant: %w", err)
	}
	return token, nil
}

// requestLoginGrant performs the first login step against /user/login-url.
func (c *Client) requestLoginGrant(ctx context.Context) (requestToken, clientParam string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/login-url", nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("login-url request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("login-url request returned status %d", res.StatusCode)
	}

	var parsed loginURLResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("decoding login-url response: %w", err)
	}
	if parsed.Error != 0 {
		return "", "", newAPIError(parsed.Error, parsed.Msg)
	}
	if parsed.Data.RequestToken == "" || parsed.Data.LoginURL == "" {
		return "", "", fmt.Errorf("login-url response missing request_token or login_url")
	}

	loginURL, err := url.Parse(parsed.Data.LoginURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing login_url: %w", err)
	}
	clientParam = loginURL.Query().Get("client")
	if clientParam == "" {
		return "", "", fmt.Errorf("login_url missing client parameter")
	}

	return parsed.Data.RequestToken, clientParam, nil
}

// exchangeLoginGrant performs the second login step against the token
// endpoint. The request token rides in the Authorization header and the
// client parameter in its own header, per MoneyLover's protocol.
func (c *Client) exchangeLoginGrant(ctx context.Context, requestToken, clientParam, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+requestToken)
	req.Header.Set("Client", clientParam)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", res.StatusCode)
	}

	var parsed tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	return parsed.AccessToken, nil
}

// envelope is the common response shape of authenticated API calls: a
// numeric error code (zero on success), a message, and the payload.
type envelope struct {
	Error int             `json:"error"`
	Msg   string          `json:"msg"`
	Data  json.RawMessage `json:"data"`
}

// post executes an authenticated POST and unmarshals the envelope payload
// into out. API-layer failures come back as *Error with their Kind already
// classified; transport failures stay plain wrapped errors.
func (c *Client) post(ctx context.Context, token, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", authScheme+" "+token)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if res.StatusCode != http.StatusOK {
			// API answered with a non-JSON error page; classify by
			// status so a 401 still reaches the refresh path.
			return newAPIError(res.StatusCode, http.StatusText(res.StatusCode))
		}
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	if env.Error != 0 {
		return newAPIError(env.Error, env.Msg)
	}
	if res.StatusCode != http.StatusOK {
		return newAPIError(res.StatusCode, http.StatusText(res.StatusCode))
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding %s payload: %w", path, err)
		}
	}
	return nil
}

// GetUserInfo returns the authenticated account's profile.
func (c *Client) GetUserInfo(ctx context.Context, token string) (*Profile, error) {
	var profile Profile
	if err := c.post(ctx, token, "/user/info", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListWallets returns all wallets visible to the account.
func (c *Client) ListWallets(ctx context.Context, token string) ([]Wallet, error) {
	var wallets []Wallet
	if err := c.post(ctx, token, "/wallet/list", nil, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// ListCategories returns the categories of one wallet.
func (c *Client) ListCategories(ctx context.Context, token, walletID string) ([]Category, error) {
	var categories []Category
	body := map[string]string{"walletId": walletID}
	if err := c.post(ctx, token, "/category/list", body, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListTransactions returns the transactions of one wallet in a date range.
func (c *Client) ListTransactions(ctx context.Context, token string, req ListTransactionsRequest) (*TransactionPage, error) {
	var page TransactionPage
	if err := c.post(ctx, token, "/transaction/list", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AddTransaction books a new transaction and returns the created record.
func (c *Client) AddTransaction(ctx context.Context, token string, tx NewTransaction) (*Transaction, error) {
	var created Transaction
	if err := c.post(ctx, token, "/transaction/add", tx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
