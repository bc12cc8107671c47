package fetch

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ILYXAAA/SecretsScanner-service/internal/credentials"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/catalog"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseAzureURL(t *testing.T) {
	repo, err := parseAzureURL("https://tfs.example.com/Collection/MyProject/_git/my-repo")
	require.NoError(t, err)
	require.Equal(t, "tfs.example.com", repo.Server)
	require.Equal(t, "Collection", repo.Collection)
	require.Equal(t, "MyProject", repo.Project)
	require.Equal(t, "my-repo", repo.Repository)
}

func TestParseAzureURLNestedCollection(t *testing.T) {
	repo, err := parseAzureURL("https://tfs.example.com/DefaultCollection/Org/Team/MyProject/_git/my-repo")
	require.NoError(t, err)
	require.Equal(t, "DefaultCollection/Org/Team", repo.Collection)
	require.Equal(t, "MyProject", repo.Project)
	require.Equal(t, "my-repo", repo.Repository)
}

func TestParseAzureURLMissingGitSegment(t *testing.T) {
	_, err := parseAzureURL("https://tfs.example.com/Collection/MyProject/my-repo")
	require.Error(t, err)
}

func TestDecisiveStatus(t *testing.T) {
	ok, msg := decisiveStatus(200)
	require.True(t, ok)
	require.Empty(t, msg)

	ok, msg = decisiveStatus(401)
	require.False(t, ok)
	require.Contains(t, msg, "Access Denied: [401]")

	ok, msg = decisiveStatus(500)
	require.False(t, ok)
	require.Contains(t, msg, "500")
}

func TestBuildAuthSkipsMissingCredentials(t *testing.T) {
	c := &Client{creds: &credentials.Provider{}}

	_, ok := c.buildAuth(authBasicNTLM)
	require.False(t, ok)

	_, ok = c.buildAuth(authPATBasic)
	require.False(t, ok)

	_, ok = c.buildAuth(authNegotiate)
	require.True(t, ok)
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	write(t, filepath.Join(dir, "rules.yml"), "rules: []\n")
	write(t, filepath.Join(dir, "excluded_files.yml"), "excluded_files: [secrets.dat]\n")
	write(t, filepath.Join(dir, "excluded_extensions.yml"), "excluded_extensions: [.exe]\n")
	write(t, filepath.Join(dir, "false-positive.yml"), "false_positive: []\n")

	cat, err := catalog.Load(zap.NewNop(), dir)
	require.NoError(t, err)
	return cat
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractZipStreamRejectsTraversal(t *testing.T) {
	cat := newTestCatalog(t)
	archive := buildZip(t, map[string]string{
		"repo/main.go":         "package main\n",
		"../escape.txt":        "should not escape",
		"repo/secrets.dat":     "excluded by name",
		"repo/payload.exe":     "excluded by extension",
	})

	destDir := t.TempDir()
	out, err := extractZipStream(bytes.NewReader(archive), destDir, cat)
	require.NoError(t, err)
	require.Equal(t, destDir, out)

	_, err = os.Stat(filepath.Join(destDir, "repo", "main.go"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(filepath.Dir(destDir), "escape.txt"))
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(destDir, "repo", "secrets.dat"))
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(destDir, "repo", "payload.exe"))
	require.True(t, os.IsNotExist(err))
}

func TestExtractEntryTruncatesOverlongPath(t *testing.T) {
	cat := newTestCatalog(t)
	destDir := t.TempDir()

	longName := strings.Repeat("a", 40) + "/" + strings.Repeat("b", 220) + ".txt"
	archive := buildZip(t, map[string]string{longName: "content"})

	_, err := extractZipStream(bytes.NewReader(archive), destDir, cat)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(destDir, strings.Repeat("a", 40)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.LessOrEqual(t, len(entries[0].Name()), truncatedBasenameLength)
}
