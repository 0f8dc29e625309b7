package entities

import (
	"time"

	"gorm.io/gorm"
)

// User is an account of the reference authentication API.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:64" json:"username"`
	PasswordHash string `gorm:"size:255" json:"-"`

	// Only the SHA-256 hash of the bearer token is stored.
	TokenHash      string     `gorm:"index;size:64" json:"-"`
	TokenCreatedAt *time.Time `json:"-"`

	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TokenExpiresAt returns when the current token expires, or nil when there is
// no token or tokens never expire.
func (u *User) TokenExpiresAt(expiry time.Duration) *time.Time {
	if u.TokenCreatedAt == nil || expiry <= 0 {
		return nil
	}
	t := u.TokenCreatedAt.Add(expiry)
	return &t
}
