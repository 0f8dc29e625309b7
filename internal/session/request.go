package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
)

// RequestOptions describes an authenticated request. Header values override
// the defaults (Authorization and Content-Type) key by key.
type RequestOptions struct {
	Method string // defaults to GET
	Header http.Header
	Body   io.Reader
}

// MakeAuthenticatedRequest sends a single request carrying the stored bearer
// token and returns the raw response whatever its status, except for 401:
// then the token is cleared, the navigator is sent to the login page and a
// *SessionExpiredError is returned.
//
// Without a stored token it fails with an *AuthenticationError wrapping
// ErrNoToken and sends nothing.
func (c *Client) MakeAuthenticatedRequest(ctx context.Context, rawURL string, opts *RequestOptions) (*http.Response, error) {
	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.resolve(rawURL)
	req, err := http.NewRequestWithContext(ctx, method, target, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = authHeaders(token, opts.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, c.expire(target)
	}
	return resp, nil
}

// Transport returns a RoundTripper applying the same rules as
// MakeAuthenticatedRequest to every request sent through it. Headers already
// set on the request override the defaults. A nil next uses
// http.DefaultTransport.
func (c *Client) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &authTransport{client: c, next: next}
}

type authTransport struct {
	client *Client
	next   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.client.requireToken()
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}

	authed := req.Clone(req.Context())
	authed.Header = authHeaders(token, req.Header)

	resp, err := t.next.RoundTrip(authed)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, t.client.expire(req.URL.String())
	}
	return resp, nil
}

func (c *Client) requireToken() (string, error) {
	token, ok, err := c.store.Get()
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if !ok || token == "" {
		return "", &AuthenticationError{Message: ErrNoToken.Error(), Err: ErrNoToken}
	}
	return token, nil
}

// expire drops the rejected token and sends the user to the login page.
func (c *Client) expire(target string) error {
	if err := c.store.Clear(); err != nil {
		log.Printf("session: failed to clear expired token: %v", err)
	}
	c.navigator.Navigate(c.loginPage)
	return &SessionExpiredError{URL: target}
}

func authHeaders(token string, overrides http.Header) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("Content-Type", "application/json")
	for key, values := range overrides {
		h[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}
	return h
}
