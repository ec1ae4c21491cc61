package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// ErrDecrypt is returned for any ciphertext that cannot be opened:
// bad encoding, truncated input or a failed authentication tag.
var ErrDecrypt = errors.New("invalid ciphertext")

const (
	keySize          = 32
	pbkdf2Iterations = 100000
)

// Encryptor provides AES-256-GCM encryption and decryption of report summaries.
type Encryptor struct {
	gcm cipher.AEAD
}

// NewEncryptor creates an Encryptor with the given 32-byte key.
func NewEncryptor(key []byte) (*Encryptor, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Encryptor{gcm: gcm}, nil
}

// NewEncryptorFromSecret accepts either 64 hex characters (used as the raw key)
// or an arbitrary passphrase, which is stretched with PBKDF2-SHA256 and salt.
func NewEncryptorFromSecret(secret, salt string) (*Encryptor, error) {
	if secret == "" {
		return nil, errors.New("encryption key is not configured")
	}
	if len(secret) == 2*keySize {
		if key, err := hex.DecodeString(secret); err == nil {
			return NewEncryptor(key)
		}
	}
	if salt == "" {
		return nil, errors.New("encryption salt is required for passphrase keys")
	}
	key := pbkdf2.Key([]byte(secret), []byte(salt), pbkdf2Iterations, keySize, sha256.New)
	return NewEncryptor(key)
}

// Encrypt encrypts plaintext and returns base64(nonce || sealed).
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := e.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt decrypts a base64-encoded ciphertext produced by Encrypt.
func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decode base64: %v", ErrDecrypt, err)
	}
	nonceSize := e.gcm.NonceSize()
	if len(data) < nonceSize+e.gcm.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	nonce, ct := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}
