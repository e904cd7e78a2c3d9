package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	encryptionPassphrase = "meallens-local-encryption-key"
	pbkdf2Iterations     = 100000
	saltLength           = 16
	derivedKeyLength     = 32
)

// encryptAPIKey seals the plaintext under AES-256-GCM with a key derived from
// the fixed passphrase and a fresh random salt. The ciphertext is
// base64(nonce || sealed); the salt is returned base64-encoded on its own so
// both can be persisted as settings.
func encryptAPIKey(plaintext string) (ciphertext, salt string, err error) {
	saltBytes := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, saltBytes); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := newGCM(saltBytes)
	if err != nil {
		return "", "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed),
		base64.StdEncoding.EncodeToString(saltBytes), nil
}

// decryptAPIKey reverses encryptAPIKey using the stored salt.
func decryptAPIKey(ciphertext, salt string) (string, error) {
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	combined, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	gcm, err := newGCM(saltBytes)
	if err != nil {
		return "", err
	}
	if len(combined) < gcm.NonceSize() {
		return "", errors.New("ciphertext shorter than nonce")
	}

	nonce, sealed := combined[:gcm.NonceSize()], combined[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}
	return string(plaintext), nil
}

func newGCM(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(encryptionPassphrase), salt, pbkdf2Iterations, derivedKeyLength, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return gcm, nil
}
