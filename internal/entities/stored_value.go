package entities

import "time"

// StoredValue is one named entry of the client-side key/value store.
// Value holds base64-encoded AES-256-GCM ciphertext.
type StoredValue struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Value     string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (StoredValue) TableName() string {
	return "stored_values"
}
