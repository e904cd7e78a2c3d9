package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meallens/internal/apperrors"
)

func TestSetSetting_RejectsEmptyKey(t *testing.T) {
	svc := newTestServices(t)

	err := svc.Settings.Set(context.Background(), "", "value", false)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestSetSetting_APIKeyFormatGuard(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	err := svc.Settings.Set(ctx, APIKeySetting, "not-a-key", false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	// The guard only applies to plaintext writes; ciphertext never matches
	// the prefix and must be accepted.
	require.NoError(t, svc.Settings.Set(ctx, APIKeySetting, "ZW5jcnlwdGVk", true))

	// Other keys take any value.
	require.NoError(t, svc.Settings.Set(ctx, "theme", "dark", false))
}

func TestSettings_UpsertAndDelete(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, svc.Settings.Set(ctx, "theme", "dark", false))
	require.NoError(t, svc.Settings.Set(ctx, "theme", "light", false))

	value, ok, err := svc.Settings.Get(ctx, "theme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "light", value)

	require.NoError(t, svc.Settings.Delete(ctx, "theme"))
	_, ok, err = svc.Settings.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEncryptedAPIKey_RoundTrip(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	const key = "sk-test-1234567890abcdef"
	require.NoError(t, svc.Settings.SaveEncryptedAPIKey(ctx, key))

	// Stored value is ciphertext, not the plaintext key.
	stored, ok, err := svc.Settings.Get(ctx, APIKeySetting)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, key, stored)

	salt, ok, err := svc.Settings.Get(ctx, APIKeySaltSetting)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, salt)

	decrypted, ok, err := svc.Settings.DecryptedAPIKey(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, key, decrypted)
}

func TestEncryptedAPIKey_FreshSaltPerSave(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, svc.Settings.SaveEncryptedAPIKey(ctx, "sk-first"))
	firstSalt, _, err := svc.Settings.Get(ctx, APIKeySaltSetting)
	require.NoError(t, err)

	require.NoError(t, svc.Settings.SaveEncryptedAPIKey(ctx, "sk-second"))
	secondSalt, _, err := svc.Settings.Get(ctx, APIKeySaltSetting)
	require.NoError(t, err)

	assert.NotEqual(t, firstSalt, secondSalt)

	decrypted, _, err := svc.Settings.DecryptedAPIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-second", decrypted)
}

func TestSaveEncryptedAPIKey_RejectsBadFormatBeforeWrite(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	err := svc.Settings.SaveEncryptedAPIKey(ctx, "pk-wrong-prefix")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	err = svc.Settings.SaveEncryptedAPIKey(ctx, "")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, ok, err := svc.Settings.Get(ctx, APIKeySetting)
	require.NoError(t, err)
	assert.False(t, ok, "rejected key must not be written")
}

func TestDecryptedAPIKey_LegacyPlaintext(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	// A value stored without a salt predates encryption and is returned as-is.
	require.NoError(t, svc.Settings.Set(ctx, APIKeySetting, "sk-legacy-key", true))

	key, ok, err := svc.Settings.DecryptedAPIKey(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sk-legacy-key", key)
}

func TestDecryptedAPIKey_Absent(t *testing.T) {
	svc := newTestServices(t)

	_, ok, err := svc.Settings.DecryptedAPIKey(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecryptedAPIKey_CorruptCiphertext(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, svc.Settings.SaveEncryptedAPIKey(ctx, "sk-will-corrupt"))
	require.NoError(t, svc.Settings.Set(ctx, APIKeySetting, "bm90IHJlYWwgY2lwaGVydGV4dA==", true))

	_, _, err := svc.Settings.DecryptedAPIKey(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeDecryption))
}

func TestAPIKeyCrypto_RoundTrip(t *testing.T) {
	ciphertext, salt, err := encryptAPIKey("sk-abc123")
	require.NoError(t, err)
	require.NotEmpty(t, ciphertext)
	require.NotEmpty(t, salt)

	plaintext, err := decryptAPIKey(ciphertext, salt)
	require.NoError(t, err)
	assert.Equal(t, "sk-abc123", plaintext)

	// Decrypting under the wrong salt must fail, not return garbage.
	_, otherSalt, err := encryptAPIKey("sk-other")
	require.NoError(t, err)
	_, err = decryptAPIKey(ciphertext, otherSalt)
	assert.Error(t, err)
}

func TestClearAllData(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Meals.SaveMeal(ctx, validDraft(), validItems())
	require.NoError(t, err)
	require.NoError(t, svc.Settings.Set(ctx, "theme", "dark", false))

	require.NoError(t, svc.Settings.ClearAllData(ctx))

	meals, err := svc.Meals.MealsByDate(ctx, "2026-01-05")
	require.NoError(t, err)
	assert.Empty(t, meals)

	_, ok, err := svc.Settings.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)
}
