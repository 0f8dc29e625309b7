package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/authclient/internal/config"
)

func setupTestRouter(t *testing.T, cfg config.Auth) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := setupTestService(t, cfg)
	controller := NewAPIController(svc, cfg)
	t.Cleanup(controller.Stop)

	router := gin.New()
	controller.RegisterRoutes(router)
	return router, svc
}

func doJSON(router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAPIController_Signup(t *testing.T) {
	router, _ := setupTestRouter(t, config.Auth{})

	t.Run("creates user", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/auth/signup", credentialsRequest{"alice", "password123"}, "")
		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "alice", body["username"])
		assert.NotContains(t, body, "token")
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	})

	t.Run("duplicate username", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/auth/signup", credentialsRequest{"alice", "password123"}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Username already exists", decodeBody(t, w)["error"])
	})

	t.Run("validation error", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/auth/signup", credentialsRequest{"bob", "short"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, ErrPasswordTooShort.Error(), decodeBody(t, w)["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAPIController_Login(t *testing.T) {
	router, svc := setupTestRouter(t, config.Auth{TokenExpiry: time.Hour, MaxLoginAttempts: 3})
	_, err := svc.Signup("alice", "password123")
	require.NoError(t, err)

	t.Run("valid credentials return a token", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/auth/login", credentialsRequest{"alice", "password123"}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp loginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Token, 64)
		assert.Equal(t, "alice", resp.Username)
		require.NotNil(t, resp.ExpiresAt)

		user, err := svc.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("unknown user and wrong password look the same", func(t *testing.T) {
		for _, creds := range []credentialsRequest{{"nobody", "password123"}, {"alice", "wrong-password"}} {
			w := doJSON(router, http.MethodPost, "/api/auth/login", creds, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Invalid username or password", decodeBody(t, w)["error"])
		}
	})

	t.Run("rate limited after repeated failures", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			doJSON(router, http.MethodPost, "/api/auth/login", credentialsRequest{"mallory", "password123"}, "")
		}
		w := doJSON(router, http.MethodPost, "/api/auth/login", credentialsRequest{"mallory", "password123"}, "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})
}

func TestAPIController_RetryAfterWhileWindowIsFull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Auth{MaxLoginAttempts: 2, RateLimitWindow: 10 * time.Minute, LockoutDuration: time.Minute}
	svc := setupTestService(t, cfg)
	controller := NewAPIController(svc, cfg)
	defer controller.Stop()
	router := gin.New()
	controller.RegisterRoutes(router)

	now := time.Now()
	controller.rateLimiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		doJSON(router, http.MethodPost, "/api/auth/login", credentialsRequest{"mallory", "password123"}, "")
	}
	now = now.Add(2 * time.Minute)

	w := doJSON(router, http.MethodPost, "/api/auth/login", credentialsRequest{"mallory", "password123"}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "480", w.Header().Get("Retry-After"))
}

func TestAPIController_Lockout(t *testing.T) {
	router, svc := setupTestRouter(t, config.Auth{MaxLoginAttempts: 2})
	_, err := svc.Signup("alice", "password123")
	require.NoError(t, err)

	// Each request comes from a different client so only the account lockout applies.
	login := func(ip, password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(credentialsRequest{"alice", password})
		req, _ := http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, login("10.0.0.1", "wrong-password").Code)
	assert.Equal(t, http.StatusUnauthorized, login("10.0.0.2", "wrong-password").Code)
	assert.Equal(t, http.StatusLocked, login("10.0.0.3", "password123").Code)
}

func TestAPIController_ProtectedRoutes(t *testing.T) {
	router, svc := setupTestRouter(t, config.Auth{TokenExpiry: time.Hour})
	user, err := svc.Signup("alice", "password123")
	require.NoError(t, err)
	token, _, err := svc.IssueToken(user.ID)
	require.NoError(t, err)

	t.Run("me without token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/auth/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "authentication required", decodeBody(t, w)["error"])
	})

	t.Run("me with unknown token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/auth/me", nil, "bogus")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid token", decodeBody(t, w)["error"])
	})

	t.Run("me with valid token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/auth/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "alice", body["username"])
		assert.EqualValues(t, user.ID, body["id"])
	})

	t.Run("expired token", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()

		w := doJSON(router, http.MethodGet, "/api/auth/me", nil, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "token expired", decodeBody(t, w)["error"])
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/auth/logout", nil, token)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, http.MethodGet, "/api/auth/me", nil, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		assert.Equal(t, tt.want, got, tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
	}
}
