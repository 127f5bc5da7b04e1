package auth

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "1h")
	require.NoError(t, Init())
	assert.Equal(t, 3600, TOKEN_EXPIRE_TIME_SEC)

	id := uuid.NewString()
	token, err := CreateJWT(id)
	require.NoError(t, err)

	sub, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id, sub)
}

func TestJWTRejectsForeignKey(t *testing.T) {
	require.NoError(t, Init())
	token, err := CreateJWT("someone")
	require.NoError(t, err)

	// rotating keys invalidates earlier tokens
	require.NoError(t, Init())
	_, err = AuthenticateJWT(token)
	assert.Error(t, err)

	_, err = AuthenticateJWT("garbage")
	assert.Error(t, err)
}

func TestInitBadExpiry(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "forever-ish")
	assert.Error(t, Init())
}

func writePEMKeys(t *testing.T, dir string) (string, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)

	privPath := filepath.Join(dir, "session.key")
	pubPath := filepath.Join(dir, "session.pub")
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600))
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o644))
	return privPath, pubPath
}

func TestInitFromPathSurvivesReload(t *testing.T) {
	privPath, pubPath := writePEMKeys(t, t.TempDir())
	require.NoError(t, InitFromPath(privPath, pubPath))

	token, err := CreateJWT("session-1")
	require.NoError(t, err)

	// loading the same files again, as a restarted process would
	require.NoError(t, InitFromPath(privPath, pubPath))
	sub, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sub)
}

func TestInitFromPathRawKeys(t *testing.T) {
	dir := t.TempDir()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	privPath, pubPath := filepath.Join(dir, "raw.key"), filepath.Join(dir, "raw.pub")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o644))
	require.NoError(t, InitFromPath(privPath, pubPath))
}

func TestInitFromPathErrors(t *testing.T) {
	dir := t.TempDir()
	privA, _ := writePEMKeys(t, mkdir(t, dir, "a"))
	_, pubB := writePEMKeys(t, mkdir(t, dir, "b"))
	assert.ErrorContains(t, InitFromPath(privA, pubB), "does not match")

	assert.Error(t, InitFromPath(filepath.Join(dir, "missing.key"), pubB))

	short := filepath.Join(dir, "short.key")
	require.NoError(t, os.WriteFile(short, []byte("nope"), 0o600))
	assert.Error(t, InitFromPath(short, pubB))
}

func mkdir(t *testing.T, parent, name string) string {
	t.Helper()
	p := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(p, 0o755))
	return p
}
