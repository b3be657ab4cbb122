package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/hkdf"
)

// ErrSealedDataInvalid reports ciphertext that is truncated or fails
// authentication.
var ErrSealedDataInvalid = errors.New("cryptox: sealed data invalid")

// sealInfo binds derived keys to this use so the same master key material
// cannot be reused for a different purpose without producing a different key.
const sealInfo = "upgate/secret-seal/v1"

// Sealer provides authenticated encryption for secrets at rest using
// AES-256-GCM. The AES key is derived from the supplied master key material
// with HKDF-SHA256, so the material may be any length.
//
// Output format: [nonce][ciphertext||tag], with a fresh random nonce per seal.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an AES-256-GCM sealer from arbitrary master key material.
func NewSealer(material []byte) (*Sealer, error) {
	if len(material) == 0 {
		return nil, fmt.Errorf("cryptox: master key material is empty")
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, material, nil, []byte(sealInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("cryptox: key derivation failed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create GCM: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// NewSealerFromPath loads master key material from path, falling back to the
// UPGATE_MASTER_KEY environment variable when path is empty. When neither is
// available an ephemeral random key is generated; sealed values then become
// unreadable after restart, which is acceptable only for development.
func NewSealerFromPath(path string) (*Sealer, error) {
	if path != "" {
		material, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cryptox: failed to read master key file: %w", err)
		}
		return NewSealer(material)
	}

	if env := os.Getenv("UPGATE_MASTER_KEY"); env != "" {
		return NewSealer([]byte(env))
	}

	material := make([]byte, 32)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate ephemeral master key: %w", err)
	}
	return NewSealer(material)
}

// Seal encrypts and authenticates plaintext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}

	// Seal appends ciphertext and auth tag to the nonce.
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize() {
		return nil, ErrSealedDataInvalid
	}

	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealedDataInvalid
	}

	return plaintext, nil
}
