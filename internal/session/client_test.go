package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mrlokans/authclient/internal/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(body))
}

func setupTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *tokenstore.MemoryStore, *recordingNavigator) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := tokenstore.NewMemoryStore()
	nav := &recordingNavigator{}
	client, err := NewClient(server.URL, store, WithHTTPClient(server.Client()), WithNavigator(nav))
	require.NoError(t, err)
	return client, store, nav
}

func TestNewClient(t *testing.T) {
	store := tokenstore.NewMemoryStore()

	t.Run("empty base URL", func(t *testing.T) {
		_, err := NewClient("", store)
		assert.Error(t, err)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewClient("http://localhost", nil)
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		client, err := NewClient("http://localhost:8188", store)
		require.NoError(t, err)
		assert.Equal(t, "/api/auth/login", client.loginPath)
		assert.Equal(t, "/api/auth/signup", client.signupPath)
		assert.Equal(t, "/login.html", client.loginPage)
		assert.Equal(t, "/", client.rootPage)
		assert.Zero(t, client.httpClient.Timeout)
	})
}

func TestClient_Login(t *testing.T) {
	t.Run("stores token from successful response", func(t *testing.T) {
		var got credentials
		client, store, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/auth/login", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(t, w, http.StatusOK, map[string]any{"token": "abc", "username": "alice"})
		})

		payload, err := client.Login(context.Background(), "alice", "s3cret-password")
		require.NoError(t, err)
		assert.Equal(t, "abc", payload["token"])
		assert.Equal(t, "alice", payload["username"])
		assert.Equal(t, credentials{Username: "alice", Password: "s3cret-password"}, got)

		token, ok, err := store.Get()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", token)
		assert.True(t, client.IsLoggedIn())
	})

	t.Run("server error message is surfaced and token unchanged", func(t *testing.T) {
		client, store, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{"error": "bad credentials"})
		})
		require.NoError(t, store.Set("previous"))

		_, err := client.Login(context.Background(), "alice", "wrong")
		require.Error(t, err)
		assert.Equal(t, "bad credentials", err.Error())

		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)

		token, _, _ := store.Get()
		assert.Equal(t, "previous", token)
	})

	t.Run("falls back to generic message", func(t *testing.T) {
		client, store, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusInternalServerError, map[string]any{})
		})

		_, err := client.Login(context.Background(), "alice", "pw")
		assert.EqualError(t, err, "Login failed")
		assert.False(t, tokenstore.IsLoggedIn(store))
	})

	t.Run("malformed error body is a decode failure", func(t *testing.T) {
		client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		})

		_, err := client.Login(context.Background(), "alice", "pw")
		require.Error(t, err)
		var authErr *AuthenticationError
		assert.False(t, errors.As(err, &authErr))
		assert.Contains(t, err.Error(), "failed to decode response")
	})

	t.Run("success without token stores nothing", func(t *testing.T) {
		client, store, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"message": "ok"})
		})

		_, err := client.Login(context.Background(), "alice", "pw")
		assert.EqualError(t, err, "Login failed")
		assert.False(t, tokenstore.IsLoggedIn(store))
	})

	t.Run("non-object success payload is a login failure", func(t *testing.T) {
		client, store, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, []string{"abc"})
		})

		_, err := client.Login(context.Background(), "alice", "pw")
		assert.EqualError(t, err, "Login failed")
		assert.False(t, tokenstore.IsLoggedIn(store))
	})

	t.Run("non-object error payload falls back to generic message", func(t *testing.T) {
		client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusUnauthorized, "oops")
		})

		_, err := client.Login(context.Background(), "alice", "pw")
		assert.EqualError(t, err, "Login failed")
	})

	t.Run("network failure is propagated", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client, err := NewClient(url, tokenstore.NewMemoryStore())
		require.NoError(t, err)

		_, err = client.Login(context.Background(), "alice", "pw")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send request")
	})
}

func TestClient_Signup(t *testing.T) {
	t.Run("success returns payload and never stores a token", func(t *testing.T) {
		client, store, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/signup", r.URL.Path)
			writeJSON(t, w, http.StatusCreated, map[string]any{"message": "user created", "token": "should-not-be-stored"})
		})

		payload, err := client.Signup(context.Background(), "bob", "long-enough-password")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"message": "user created", "token": "should-not-be-stored"}, payload)
		assert.False(t, tokenstore.IsLoggedIn(store))
	})

	t.Run("success leaves existing token unchanged", func(t *testing.T) {
		client, store, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusCreated, map[string]any{"message": "user created"})
		})
		require.NoError(t, store.Set("existing"))

		_, err := client.Signup(context.Background(), "bob", "long-enough-password")
		require.NoError(t, err)
		token, _, _ := store.Get()
		assert.Equal(t, "existing", token)
	})

	t.Run("non-object success payload is returned unchanged", func(t *testing.T) {
		tests := []struct {
			name string
			body any
			want any
		}{
			{name: "array", body: []string{"ok"}, want: []any{"ok"}},
			{name: "string", body: "created", want: "created"},
			{name: "number", body: 1, want: float64(1)},
			{name: "null", body: nil, want: nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				client, store, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					writeJSON(t, w, http.StatusCreated, tt.body)
				})

				payload, err := client.Signup(context.Background(), "bob", "long-enough-password")
				require.NoError(t, err)
				assert.Equal(t, tt.want, payload)
				assert.False(t, tokenstore.IsLoggedIn(store))
			})
		}
	})

	t.Run("non-object error payload falls back to generic message", func(t *testing.T) {
		for _, body := range []any{"oops", []string{"bad"}, 7} {
			client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusBadRequest, body)
			})

			_, err := client.Signup(context.Background(), "bob", "pw")
			assert.EqualError(t, err, "Signup failed")
			var authErr *AuthenticationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
		}
	})

	t.Run("server error message", func(t *testing.T) {
		client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusConflict, map[string]any{"error": "Username already exists"})
		})

		_, err := client.Signup(context.Background(), "bob", "pw")
		assert.EqualError(t, err, "Username already exists")
	})

	t.Run("falls back to generic message", func(t *testing.T) {
		client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]any{"error": 42})
		})

		_, err := client.Signup(context.Background(), "bob", "pw")
		assert.EqualError(t, err, "Signup failed")
	})
}

func TestClient_Logout(t *testing.T) {
	client, store, nav := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("logout must not call the server, got %s", r.URL.Path)
	})
	require.NoError(t, store.Set("abc"))

	require.NoError(t, client.Logout())
	assert.False(t, client.IsLoggedIn())
	assert.Equal(t, []string{"/"}, nav.Paths())

	require.NoError(t, client.Logout())
}

func TestClient_TokenPassthrough(t *testing.T) {
	client, err := NewClient("http://localhost", tokenstore.NewMemoryStore())
	require.NoError(t, err)

	assert.False(t, client.IsLoggedIn())
	require.NoError(t, client.SetToken("T"))
	token, ok, err := client.Token()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T", token)

	require.NoError(t, client.ClearToken())
	assert.False(t, client.IsLoggedIn())
}
