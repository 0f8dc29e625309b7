package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/authclient/internal/config"
	"github.com/mrlokans/authclient/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("Username already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
)

const defaultLockoutThreshold = 5

// Service handles accounts and bearer tokens.
type Service struct {
	db     *gorm.DB
	config config.Auth
	now    func() time.Time
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		config: cfg,
		now:    time.Now,
	}
}

// Migrate creates the tables the service needs.
func (s *Service) Migrate() error {
	return s.db.AutoMigrate(&entities.User{})
}

// Signup creates a new user. It does not issue a token.
func (s *Service) Signup(username, password string) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	var existing entities.User
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and returns the user.
// Too many consecutive failures lock the account for LockoutDuration.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	var user entities.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(&user)
		return nil, err
	}

	err = s.db.Model(&user).Updates(map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	return &user, nil
}

func (s *Service) recordFailedLogin(user *entities.User) {
	user.FailedLoginCount++
	updates := map[string]any{
		"failed_login_count": user.FailedLoginCount,
	}

	threshold := s.config.MaxLoginAttempts
	if threshold <= 0 {
		threshold = defaultLockoutThreshold
	}
	if user.FailedLoginCount >= threshold {
		lockout := s.config.LockoutDuration
		if lockout == 0 {
			lockout = 30 * time.Minute
		}
		updates["locked_until"] = s.now().Add(lockout)
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		log.Printf("auth: failed to record failed login for user %d: %v", user.ID, err)
	}
}

// IssueToken replaces the user's bearer token with a new one and returns the
// plaintext together with its expiry (nil when tokens never expire).
func (s *Service) IssueToken(userID uint) (string, *time.Time, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.now()
	result := s.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"token_hash":       hash,
		"token_created_at": now,
	})
	if result.Error != nil {
		return "", nil, fmt.Errorf("failed to save token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", nil, ErrUserNotFound
	}

	user := entities.User{TokenCreatedAt: &now}
	return plaintext, user.TokenExpiresAt(s.config.TokenExpiry), nil
}

// ValidateToken returns the owner of a plaintext bearer token.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var user entities.User
	err := s.db.Where("token_hash = ?", HashToken(token)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if expiresAt := user.TokenExpiresAt(s.config.TokenExpiry); expiresAt != nil && s.now().After(*expiresAt) {
		return nil, ErrTokenExpired
	}
	return &user, nil
}

// RevokeToken removes a user's bearer token.
func (s *Service) RevokeToken(userID uint) error {
	result := s.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"token_hash":       "",
		"token_created_at": nil,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke token: %w", result.Error)
	}
	return nil
}

// PurgeExpiredTokens clears every token older than the configured expiry and
// returns how many were removed. Without an expiry nothing is purged.
func (s *Service) PurgeExpiredTokens() (int64, error) {
	if s.config.TokenExpiry <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.config.TokenExpiry)
	result := s.db.Model(&entities.User{}).
		Where("token_hash <> '' AND token_created_at < ?", cutoff).
		Updates(map[string]any{
			"token_hash":       "",
			"token_created_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
