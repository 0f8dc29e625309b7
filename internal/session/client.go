package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/mrlokans/authclient/internal/config"
	"github.com/mrlokans/authclient/internal/tokenstore"
)

// Client performs login/signup against the remote API and keeps the issued
// token in its Store. It holds no other state; concurrent calls are not
// coordinated.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	store      tokenstore.Store
	navigator  Navigator

	loginPath  string
	signupPath string
	loginPage  string
	rootPage   string
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NewClient creates a Client for the API at baseURL.
func NewClient(baseURL string, store tokenstore.Store, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is empty")
	}
	if store == nil {
		return nil, errors.New("token store is nil")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{},
		store:      store,
		navigator:  LogNavigator{},
		loginPath:  config.DefaultLoginEndpoint,
		signupPath: config.DefaultSignupEndpoint,
		loginPage:  config.DefaultLoginPage,
		rootPage:   config.DefaultRootPage,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// IsLoggedIn reports whether a token is stored.
func (c *Client) IsLoggedIn() bool {
	return tokenstore.IsLoggedIn(c.store)
}

// Token returns the stored token; ok is false when none is stored.
func (c *Client) Token() (token string, ok bool, err error) {
	return c.store.Get()
}

func (c *Client) SetToken(token string) error {
	return c.store.Set(token)
}

func (c *Client) ClearToken() error {
	return c.store.Clear()
}

// Login sends the credentials to the login endpoint and stores the returned
// token. The full response payload is returned. On failure the stored token
// is left as it was.
func (c *Client) Login(ctx context.Context, username, password string) (map[string]any, error) {
	resp, err := c.postCredentials(ctx, c.loginPath, username, password, loginFailedMessage)
	if err != nil {
		return nil, err
	}

	payload, _ := resp.payload.(map[string]any)
	token, ok := payload["token"].(string)
	if !ok {
		return nil, &AuthenticationError{
			Message:    loginFailedMessage,
			StatusCode: resp.statusCode,
			Err:        errors.New("response did not include a token"),
		}
	}
	if err := c.store.Set(token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return payload, nil
}

// Signup registers the user. It does not log in: the stored token is never
// touched, and the decoded payload is returned unchanged whatever its JSON type.
func (c *Client) Signup(ctx context.Context, username, password string) (any, error) {
	resp, err := c.postCredentials(ctx, c.signupPath, username, password, signupFailedMessage)
	if err != nil {
		return nil, err
	}
	return resp.payload, nil
}

// Logout clears the token and navigates to the root page.
func (c *Client) Logout() error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	c.navigator.Navigate(c.rootPage)
	return nil
}

type apiResponse struct {
	statusCode int
	payload    any
}

func (c *Client) postCredentials(ctx context.Context, path, username, password, fallback string) (*apiResponse, error) {
	body, err := json.Marshal(credentials{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !isSuccess(resp.StatusCode) {
		var message string
		if obj, ok := payload.(map[string]any); ok {
			message, _ = obj["error"].(string)
		}
		log.Printf("session: %s %s returned %d", req.Method, path, resp.StatusCode)
		return nil, newServerError(resp.StatusCode, message, fallback)
	}
	return &apiResponse{statusCode: resp.StatusCode, payload: payload}, nil
}

// resolve makes ref absolute against the base URL; absolute refs are kept.
func (c *Client) resolve(ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.baseURL.ResolveReference(parsed).String()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
