// Package auth implements the reference authentication API that the session
// client talks to. It is used by the "serve" command for local development
// and by integration tests.
//
// # Endpoints
//
//	POST /api/auth/signup  {"username","password"} -> 201 {"message","username"}
//	POST /api/auth/login   {"username","password"} -> 200 {"token","username","expires_at"}
//	POST /api/auth/logout  (Bearer)                -> 200 {"message"}
//	GET  /api/auth/me      (Bearer)                -> 200 {"id","username"}
//
// Every failure is answered with {"error": "<message>"}.
//
// # Configuration
//
//	AUTH_TOKEN_EXPIRY=720h        # Bearer token lifetime (30 days default)
//	AUTH_BCRYPT_COST=12           # bcrypt cost factor
//	AUTH_MAX_LOGIN_ATTEMPTS=5     # Failed logins before lockout
//	AUTH_RATE_LIMIT_WINDOW=15m
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	service := auth.NewService(db, cfg.Auth)
//	controller := auth.NewAPIController(service, cfg.Auth)
//	controller.RegisterRoutes(router)
package auth
