package config

// Default paths and endpoints
const (
	// DefaultDatabasePath is the default path for the reference API user database
	DefaultDatabasePath = "./authclient.db"

	// DefaultTokenFilePath is the default path for the file-backed token store
	DefaultTokenFilePath = "./.authclient-token.json"

	// DefaultTokenDatabasePath is the default path for the sqlite-backed token store
	DefaultTokenDatabasePath = "./authclient-token.db"

	DefaultLoginEndpoint  = "/api/auth/login"
	DefaultSignupEndpoint = "/api/auth/signup"

	DefaultLoginPage = "/login.html"
	DefaultRootPage  = "/"
)
