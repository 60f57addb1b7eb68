package papercipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

const (
	// KeySize is the required paper key length (AES-256).
	KeySize = 32

	// nonceSize is the standard GCM nonce length.
	nonceSize = 12
)

// NewPaperKey generates a fresh random paper key. The caller owns the key and
// must wipe it with WipeKey once the seal or redeem operation completes.
func NewPaperKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate paper key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under the given key with AES-256-GCM. A fresh random
// nonce is generated for every call and bound into the Seal operation, so a
// nonce can never be reused with the same key. The authentication tag is
// returned separately from the ciphertext.
func Encrypt(plaintext, key []byte) (interfaces.EncryptedPayload, error) {
	if len(key) != KeySize {
		return interfaces.EncryptedPayload{}, fmt.Errorf("%w: got %d bytes, need %d",
			interfaces.ErrInvalidKeyLength, len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return interfaces.EncryptedPayload{}, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return interfaces.EncryptedPayload{}, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return interfaces.EncryptedPayload{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aesGCM.Seal(nil, nonce, plaintext, nil)

	// GCM appends the tag to the ciphertext; keep them separate at the boundary.
	split := len(sealed) - aesGCM.Overhead()
	return interfaces.EncryptedPayload{
		Ciphertext: sealed[:split],
		Nonce:      nonce,
		Tag:        sealed[split:],
	}, nil
}

// Decrypt opens a sealed payload. The authentication tag is verified before
// any plaintext is released; a tampered ciphertext, wrong key, or wrong nonce
// all fail closed with ErrAuthenticationFailure.
func Decrypt(payload interfaces.EncryptedPayload, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d",
			interfaces.ErrInvalidKeyLength, len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(payload.Nonce) != aesGCM.NonceSize() || len(payload.Tag) != aesGCM.Overhead() {
		return nil, interfaces.ErrAuthenticationFailure
	}

	sealed := make([]byte, 0, len(payload.Ciphertext)+len(payload.Tag))
	sealed = append(sealed, payload.Ciphertext...)
	sealed = append(sealed, payload.Tag...)

	plaintext, err := aesGCM.Open(nil, payload.Nonce, sealed, nil)
	if err != nil {
		return nil, interfaces.ErrAuthenticationFailure
	}

	return plaintext, nil
}

// WipeKey securely wipes key material from memory.
func WipeKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}

// DeriveAccessKey creates a deterministic paper key from an operator-supplied
// passphrase using Argon2id, for flows where the key must be regenerable
// instead of random.
//
// Parameters: time=1, memory=64MB, threads=4.
func DeriveAccessKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}
