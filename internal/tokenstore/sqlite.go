package tokenstore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/authclient/internal/crypto"
	"github.com/mrlokans/authclient/internal/entities"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	// EnvEncryptionKey is the environment variable for the encryption key
	EnvEncryptionKey = "TOKEN_ENCRYPTION_KEY"

	// DefaultKeyFileName is the default name for the key file
	DefaultKeyFileName = ".authclient-token-key"
)

// SQLiteStore keeps the token encrypted in a sqlite table.
type SQLiteStore struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
}

// SQLiteConfig holds configuration for the sqlite token store
type SQLiteConfig struct {
	// DatabasePath is the path to the SQLite database file
	DatabasePath string

	// EncryptionKey is the base64-encoded 32-byte encryption key.
	// If empty, will try to load from environment or key file
	EncryptionKey string

	// KeyFilePath is the path to the encryption key file.
	// If empty, defaults to ~/.authclient-token-key
	KeyFilePath string
}

// NewSQLiteStore opens (and migrates) the token database.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	encryptor, err := crypto.NewEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&entities.StoredValue{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteStore{db: db, encryptor: encryptor}, nil
}

// resolveEncryptionKey picks the key from config, then environment, then key file.
func resolveEncryptionKey(cfg SQLiteConfig) (string, error) {
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}
	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return envKey, nil
	}

	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		keyFilePath = filepath.Join(homeDir, DefaultKeyFileName)
	}

	key, created, err := crypto.LoadOrCreateKeyFile(keyFilePath)
	if err != nil {
		return "", err
	}
	if created {
		log.Printf("tokenstore: generated new encryption key at %s", keyFilePath)
	}
	return key, nil
}

func (s *SQLiteStore) Get() (string, bool, error) {
	var row entities.StoredValue
	err := s.db.Where("name = ?", Key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get token: %w", err)
	}

	token, err := s.encryptor.Decrypt(row.Value)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt token: %w", err)
	}
	return token, true, nil
}

func (s *SQLiteStore) Set(token string) error {
	value, err := s.encryptor.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	row := entities.StoredValue{Name: Key, Value: value}
	result := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
		}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to save token: %w", result.Error)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	result := s.db.Where("name = ?", Key).Delete(&entities.StoredValue{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete token: %w", result.Error)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
