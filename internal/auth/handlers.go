package auth

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/authclient/internal/config"
)

const invalidCredentialsMessage = "Invalid username or password"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string     `json:"token"`
	Username  string     `json:"username"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// APIController serves the JSON authentication endpoints.
type APIController struct {
	service     *Service
	middleware  *Middleware
	rateLimiter *RateLimiter
}

// NewAPIController creates the controller and its login rate limiter.
func NewAPIController(service *Service, cfg config.Auth) *APIController {
	return &APIController{
		service:    service,
		middleware: NewMiddleware(service),
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// RegisterRoutes registers the authentication API on the router.
func (ac *APIController) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/auth", APIHeaders())
	api.POST("/signup", ac.Signup)
	api.POST("/login", ac.Login)

	protected := api.Group("", ac.middleware.RequireBearer())
	protected.POST("/logout", ac.Logout)
	protected.GET("/me", ac.Me)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *APIController) Stop() {
	ac.rateLimiter.Stop()
}

// Signup creates an account. The client has to log in separately.
func (ac *APIController) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := ac.service.Signup(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, ErrUsernameRequired), errors.Is(err, ErrUsernameInvalid),
			errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrPasswordTooShort),
			errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("auth: signup failed for %q: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "user created",
		"username": user.Username,
	})
}

// Login checks credentials and issues a fresh bearer token.
func (ac *APIController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts. Please try again later."})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, req.Username)
		switch {
		case errors.Is(err, ErrAccountLocked):
			c.JSON(http.StatusLocked, gin.H{"error": "Account is locked. Please try again later."})
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentialsMessage})
		default:
			log.Printf("auth: login failed for %q: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}
	ac.rateLimiter.RecordSuccess(clientIP, req.Username)

	token, expiresAt, err := ac.service.IssueToken(user.ID)
	if err != nil {
		log.Printf("auth: failed to issue token for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		Username:  user.Username,
		ExpiresAt: expiresAt,
	})
}

// Logout revokes the caller's token.
func (ac *APIController) Logout(c *gin.Context) {
	if err := ac.service.RevokeToken(GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}

// Me returns the authenticated user.
func (ac *APIController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       GetUserID(c),
		"username": GetUsername(c),
	})
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
