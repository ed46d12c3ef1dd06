package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize  = 16 // Argon2id salt size in bytes
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size

	// Argon2id parameters, fixed per vault format version
	ArgonTime    = 3
	ArgonMemory  = 64 * 1024 // KiB
	ArgonThreads = 4
)

var (
	ErrKeyDerivation = errors.New("invalid key derivation parameters")
	ErrDecryption    = errors.New("decryption failed")
)

// Envelope is the encrypted representation of a single secret. The GCM
// authentication tag is appended to Ciphertext, so Ciphertext is always
// TagSize bytes longer than the plaintext it protects.
type Envelope struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// NewSalt generates a fresh random KDF salt
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an encryption key from a password and salt using
// Argon2id. Deterministic: the same password and salt always produce the
// same key. Any password content is acceptable, including empty; only the
// salt is validated.
func DeriveKey(password, salt []byte) ([]byte, error) {
	if len(salt) < SaltSize {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", ErrKeyDerivation, SaltSize)
	}
	return argon2.IDKey(password, salt, ArgonTime, ArgonMemory, ArgonThreads, KeySize), nil
}

// Encrypt encrypts plaintext using AES-256-GCM with a fresh random nonce.
func Encrypt(key, plaintext []byte) (Envelope, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return Envelope{}, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return Envelope{
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Decrypt authenticates and decrypts an envelope. Every failure mode, wrong
// key included, collapses to ErrDecryption: the caller cannot distinguish a
// wrong password from a tampered envelope, and no partial plaintext ever
// escapes.
func Decrypt(key []byte, env Envelope) ([]byte, error) {
	if len(env.Nonce) != NonceSize || len(env.Ciphertext) < TagSize {
		return nil, ErrDecryption
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecryption
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
