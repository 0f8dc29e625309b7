package config

import (
	"time"

	"github.com/spf13/viper"
)

type TokenBackend string

const (
	TokenBackendMemory TokenBackend = "memory"
	TokenBackendFile   TokenBackend = "file"   // JSON key/value file (default)
	TokenBackendSQLite TokenBackend = "sqlite" // Encrypted sqlite table
)

type (
	Config struct {
		Client
		TokenStore
		HTTP
		Global
		Database
		Auth
		Sweep
	}

	// Client configures the session client used by the CLI commands.
	Client struct {
		BaseURL        string
		LoginEndpoint  string
		SignupEndpoint string
		LoginPage      string        // Navigation target on session expiry
		RootPage       string        // Navigation target on logout
		Timeout        time.Duration // 0 means no client-side timeout
	}
	TokenStore struct {
		Backend       TokenBackend
		FilePath      string
		DatabasePath  string
		EncryptionKey string // base64 32-byte key; falls back to env/key file when empty
		KeyFilePath   string
	}
	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Auth struct {
		TokenExpiry time.Duration
		BcryptCost  int

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Sweep struct {
		Enabled  bool
		Schedule string // Cron format: "*/15 * * * *" = every 15 minutes
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	// Client defaults
	v.SetDefault("api_base_url", "http://localhost:8188")
	v.SetDefault("api_login_endpoint", DefaultLoginEndpoint)
	v.SetDefault("api_signup_endpoint", DefaultSignupEndpoint)
	v.SetDefault("login_page", DefaultLoginPage)
	v.SetDefault("root_page", DefaultRootPage)
	v.SetDefault("http_timeout", "0s")

	// Token store defaults
	v.SetDefault("token_store", string(TokenBackendFile))
	v.SetDefault("token_file_path", DefaultTokenFilePath)
	v.SetDefault("token_database_path", DefaultTokenDatabasePath)
	v.SetDefault("token_encryption_key", "")
	v.SetDefault("token_key_file", "")

	// Reference API server defaults
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	v.SetDefault("sweep_enabled", true)
	v.SetDefault("sweep_schedule", "*/15 * * * *")

	return &Config{
		Client: Client{
			BaseURL:        v.GetString("API_BASE_URL"),
			LoginEndpoint:  v.GetString("API_LOGIN_ENDPOINT"),
			SignupEndpoint: v.GetString("API_SIGNUP_ENDPOINT"),
			LoginPage:      v.GetString("LOGIN_PAGE"),
			RootPage:       v.GetString("ROOT_PAGE"),
			Timeout:        v.GetDuration("HTTP_TIMEOUT"),
		},
		TokenStore: TokenStore{
			Backend:       TokenBackend(v.GetString("TOKEN_STORE")),
			FilePath:      v.GetString("TOKEN_FILE_PATH"),
			DatabasePath:  v.GetString("TOKEN_DATABASE_PATH"),
			EncryptionKey: v.GetString("TOKEN_ENCRYPTION_KEY"),
			KeyFilePath:   v.GetString("TOKEN_KEY_FILE"),
		},
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Sweep: Sweep{
			Enabled:  v.GetBool("SWEEP_ENABLED"),
			Schedule: v.GetString("SWEEP_SCHEDULE"),
		},
	}
}
