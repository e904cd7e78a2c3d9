package services

import (
	"context"
	"log"
	"strings"

	"meallens/internal/apperrors"
	"meallens/internal/events"
	"meallens/internal/models"
	"meallens/internal/repositories"
)

const (
	// APIKeySetting holds the AI provider credential (ciphertext in the
	// normal case, plaintext under the availability fallback).
	APIKeySetting = "apiKey"
	// APIKeySaltSetting holds the base64 key-derivation salt. Its absence
	// marks the stored credential as legacy plaintext.
	APIKeySaltSetting = "apiKeySalt"

	apiKeyPrefix = "sk-"
)

type SettingsService interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, encrypted bool) error
	Delete(ctx context.Context, key string) error
	SaveEncryptedAPIKey(ctx context.Context, apiKey string) error
	DecryptedAPIKey(ctx context.Context) (string, bool, error)
	ClearAllData(ctx context.Context) error
}

type settingsService struct {
	settings repositories.SettingRepository
	store    repositories.StoreRepository
}

func NewSettingsService(settings repositories.SettingRepository, store repositories.StoreRepository) SettingsService {
	return &settingsService{settings: settings, store: store}
}

// Get returns the raw stored value; ok is false when the key is absent.
func (s *settingsService) Get(ctx context.Context, key string) (string, bool, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if setting == nil {
		return "", false, nil
	}
	return setting.Value, true, nil
}

// Set upserts a setting. The format guard on the API key applies only to
// plaintext writes; ciphertext would never match the prefix incidentally.
func (s *settingsService) Set(ctx context.Context, key, value string, encrypted bool) error {
	if key == "" {
		return apperrors.NewValidation("setting key must be a non-empty string")
	}
	if key == APIKeySetting && !encrypted && !strings.HasPrefix(value, apiKeyPrefix) {
		return apperrors.NewValidation(`API key must start with "sk-"`)
	}
	return s.settings.Put(ctx, &models.Setting{Key: key, Value: value, Encrypted: encrypted})
}

func (s *settingsService) Delete(ctx context.Context, key string) error {
	return s.settings.Delete(ctx, key)
}

// SaveEncryptedAPIKey validates the key format, then stores ciphertext plus
// salt. If the crypto primitives fail (no secure randomness, cipher error)
// the key is stored as plaintext with a warning: losing the feature entirely
// is considered worse than losing at-rest encryption.
func (s *settingsService) SaveEncryptedAPIKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return apperrors.NewValidation("API key is required")
	}
	if !strings.HasPrefix(apiKey, apiKeyPrefix) {
		return apperrors.NewValidation(`API key must start with "sk-"`)
	}

	ciphertext, salt, err := encryptAPIKey(apiKey)
	if err != nil {
		log.Printf("Warning: API key encryption unavailable, storing plaintext: %v", err)
		if err := s.Set(ctx, APIKeySetting, apiKey, true); err != nil {
			return err
		}
		// Drop any stale salt so reads take the legacy-plaintext path.
		return s.settings.Delete(ctx, APIKeySaltSetting)
	}

	if err := s.Set(ctx, APIKeySetting, ciphertext, true); err != nil {
		return err
	}
	return s.Set(ctx, APIKeySaltSetting, salt, false)
}

// DecryptedAPIKey returns the stored credential in the clear. A stored value
// without a salt is treated as legacy plaintext and returned as-is; a value
// with a salt that fails to decrypt surfaces a decryption error, never an
// empty string.
func (s *settingsService) DecryptedAPIKey(ctx context.Context) (string, bool, error) {
	stored, ok, err := s.Get(ctx, APIKeySetting)
	if err != nil || !ok {
		return "", false, err
	}

	salt, hasSalt, err := s.Get(ctx, APIKeySaltSetting)
	if err != nil {
		return "", false, err
	}
	if !hasSalt {
		return stored, true, nil
	}

	plaintext, err := decryptAPIKey(stored, salt)
	if err != nil {
		return "", false, apperrors.NewDecryption(err)
	}
	return plaintext, true, nil
}

// ClearAllData performs the factory reset across every table.
func (s *settingsService) ClearAllData(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	events.Emit(ctx, events.NewDataCleared())
	return nil
}
