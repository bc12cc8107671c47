package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/catalog"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeSettings(t *testing.T, dir string) {
	t.Helper()

	mustWrite(t, filepath.Join(dir, "rules.yml"), `
rules:
  - id: generic-api-key
    message: Generic API Key
    pattern: "(?i)api[_-]?key['\"]?\\s*[:=]\\s*['\"][a-z0-9]{16,}['\"]"
    severity: high
  - id: broken-rule
    message: Has an unclosed group
    pattern: "("
    severity: high
`)
	mustWrite(t, filepath.Join(dir, "excluded_files.yml"), `
excluded_files:
  - package-lock.json
  - Go.Sum
`)
	mustWrite(t, filepath.Join(dir, "excluded_extensions.yml"), `
excluded_extensions:
  - .png
  - .JPG
`)
	mustWrite(t, filepath.Join(dir, "false-positive.yml"), `
false_positive:
  - example.com
  - "TODO: replace me"
`)
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDropsUncompilableRules(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir)

	cat, err := catalog.Load(zap.NewNop(), dir)
	require.NoError(t, err)
	require.Len(t, cat.Rules, 1)
	require.Equal(t, "generic-api-key", cat.Rules[0].ID)
}

func TestIsExcludedMatchesCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir)

	cat, err := catalog.Load(zap.NewNop(), dir)
	require.NoError(t, err)

	require.True(t, cat.IsExcluded("package-lock.json"))
	require.True(t, cat.IsExcluded("go.sum"))
	require.True(t, cat.IsExcluded("photo.PNG"))
	require.True(t, cat.IsExcluded("photo.jpg"))
	require.False(t, cat.IsExcluded("main.go"))
}

func TestIsFalsePositive(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir)

	cat, err := catalog.Load(zap.NewNop(), dir)
	require.NoError(t, err)

	require.True(t, cat.IsFalsePositive("visit https://EXAMPLE.com/docs"))
	require.True(t, cat.IsFalsePositive("key = 'x' // todo: replace me"))
	require.False(t, cat.IsFalsePositive("key = 'sk_live_abcdef1234567890'"))
}

func TestFullExtension(t *testing.T) {
	require.Equal(t, ".tar.gz", catalog.FullExtension("archive.tar.gz"))
	require.Equal(t, ".go", catalog.FullExtension("main.go"))
	require.Equal(t, "", catalog.FullExtension("Makefile"))
}
