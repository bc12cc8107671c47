package credentials_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ILYXAAA/SecretsScanner-service/internal/credentials"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := credentials.GenerateKey()
	require.NoError(t, err)

	sealed, err := credentials.Encrypt("hunter2", key)
	require.NoError(t, err)

	plain, err := credentials.Decrypt(sealed, key)
	require.NoError(t, err)
	require.Equal(t, "hunter2", plain)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key, err := credentials.GenerateKey()
	require.NoError(t, err)
	otherKey, err := credentials.GenerateKey()
	require.NoError(t, err)

	sealed, err := credentials.Encrypt("hunter2", key)
	require.NoError(t, err)

	_, err = credentials.Decrypt(sealed, otherKey)
	require.Error(t, err)
}

func TestLoadMissingFilesLeavesCredentialsUnset(t *testing.T) {
	p, err := credentials.Load(credentials.Keys{}, credentials.Files{})
	require.NoError(t, err)

	_, ok := p.Login()
	require.False(t, ok)
	_, ok = p.Password()
	require.False(t, ok)
	_, ok = p.PAT()
	require.False(t, ok)
}

func TestLoadDecryptsPresentFiles(t *testing.T) {
	dir := t.TempDir()
	key, err := credentials.GenerateKey()
	require.NoError(t, err)

	sealed, err := credentials.Encrypt("svc-account", key)
	require.NoError(t, err)

	loginPath := filepath.Join(dir, "login.dat")
	require.NoError(t, os.WriteFile(loginPath, sealed, 0o600))

	p, err := credentials.Load(
		credentials.Keys{LoginKeyB64: key},
		credentials.Files{LoginPath: loginPath},
	)
	require.NoError(t, err)

	login, ok := p.Login()
	require.True(t, ok)
	require.Equal(t, "svc-account", login)

	_, ok = p.PAT()
	require.False(t, ok)
}
