package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/authclient/internal/auth"
	"github.com/mrlokans/authclient/internal/database"
)

// RouterConfig holds the dependencies of the HTTP server.
type RouterConfig struct {
	Database      *database.Database
	AuthAPI       *auth.APIController
	Version       string
	AccessLogging bool
}

// NewRouter builds the gin engine serving the health check and the
// authentication API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	if cfg.AccessLogging {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	if cfg.AuthAPI != nil {
		cfg.AuthAPI.RegisterRoutes(router)
	}

	return router
}
