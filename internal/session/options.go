package session

import (
	"net/http"

	"github.com/mrlokans/authclient/internal/config"
)

type Option func(*Client)

// WithHTTPClient sets the client used for all requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithNavigator sets the navigator used on logout and session expiry.
func WithNavigator(navigator Navigator) Option {
	return func(c *Client) {
		if navigator != nil {
			c.navigator = navigator
		}
	}
}

// WithLoginPage sets where to navigate when the session expires.
func WithLoginPage(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.loginPage = path
		}
	}
}

// WithRootPage sets where to navigate after logout.
func WithRootPage(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.rootPage = path
		}
	}
}

// WithEndpoints overrides the login and signup endpoint paths.
func WithEndpoints(loginPath, signupPath string) Option {
	return func(c *Client) {
		if loginPath != "" {
			c.loginPath = loginPath
		}
		if signupPath != "" {
			c.signupPath = signupPath
		}
	}
}

// FromConfig applies the client section of the application config.
func FromConfig(cfg config.Client) Option {
	return func(c *Client) {
		WithEndpoints(cfg.LoginEndpoint, cfg.SignupEndpoint)(c)
		WithLoginPage(cfg.LoginPage)(c)
		WithRootPage(cfg.RootPage)(c)
		if cfg.Timeout > 0 {
			c.httpClient = &http.Client{Timeout: cfg.Timeout}
		}
	}
}
