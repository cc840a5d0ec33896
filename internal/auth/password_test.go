package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePublicKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))
	return priv, path
}

func TestPasswordCipher_RoundTrip(t *testing.T) {
	priv, path := writePublicKey(t)

	c, err := LoadPasswordCipher(path)
	require.NoError(t, err)
	require.NotNil(t, c)

	enc, err := c.Encrypt("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", enc)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	plain, err := rsa.DecryptPKCS1v15(nil, priv, raw)
	require.NoError(t, err)
	assert.Equal(t, "123456", string(plain))
}

func TestPasswordCipher_Passthrough(t *testing.T) {
	c, err := LoadPasswordCipher("")
	require.NoError(t, err)
	assert.Nil(t, c)

	out, err := c.Encrypt("secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", out)
}

func TestParsePublicKey_Invalid(t *testing.T) {
	_, err := ParsePublicKey([]byte("not pem"))
	require.Error(t, err)

	_, err = LoadPasswordCipher(filepath.Join(t.TempDir(), "missing.pem"))
	require.Error(t, err)
}
