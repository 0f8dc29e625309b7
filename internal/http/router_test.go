package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/authclient/internal/auth"
	"github.com/mrlokans/authclient/internal/config"
)

func TestNewRouter(t *testing.T) {
	db := setupHealthTestDB(t)
	cfg := config.Auth{BcryptCost: 4}
	api := auth.NewAPIController(auth.NewService(db.DB, cfg), cfg)
	defer api.Stop()

	router := NewRouter(RouterConfig{Database: db, AuthAPI: api, Version: "test"})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("auth routes are mounted", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, err := http.NewRequest("POST", "/api/auth/signup", bytes.NewBufferString(`{"username":"alice","password":"password123"}`))
		require.NoError(t, err)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/auth/me", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/nope", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
