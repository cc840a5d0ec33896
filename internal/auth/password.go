package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// PasswordCipher encrypts passwords with the backend's RSA public key.
// The backend decrypts every password field it receives, so credentials
// are sent as base64 PKCS#1 v1.5 ciphertext.
type PasswordCipher struct {
	key *rsa.PublicKey
}

// ParsePublicKey builds a cipher from a PEM-encoded PKIX public key.
func ParsePublicKey(pemBytes []byte) (*PasswordCipher, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found in public key")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is %T, want RSA", parsed)
	}
	return &PasswordCipher{key: key}, nil
}

// LoadPasswordCipher reads a public key file. An empty path yields a nil
// cipher, which sends passwords unchanged.
func LoadPasswordCipher(path string) (*PasswordCipher, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from user config
	if err != nil {
		return nil, fmt.Errorf("failed to read public key %s: %w", path, err)
	}
	return ParsePublicKey(data)
}

// Encrypt returns the base64 ciphertext of plain. A nil cipher and an empty
// password both pass through unchanged.
func (c *PasswordCipher) Encrypt(plain string) (string, error) {
	if c == nil || plain == "" {
		return plain, nil
	}
	out, err := rsa.EncryptPKCS1v15(rand.Reader, c.key, []byte(plain))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}
