package queue_test

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ILYXAAA/SecretsScanner-service/config"
	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/catalog"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/classifier"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/courier"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/fetch"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/queue"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/scanner"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnqueueRejectsAtBackPressureThreshold(t *testing.T) {
	q := queue.New(zap.NewNop(), queue.Config{MaxWorkers: 1, IOPoolSize: 1}, queue.Deps{})

	require.NoError(t, q.Enqueue("p1", queue.SingleItem(entity.ScanJob{ProjectName: "p1"})))
	require.NoError(t, q.Enqueue("p2", queue.SingleItem(entity.ScanJob{ProjectName: "p2"})))

	err := q.Enqueue("p3", queue.SingleItem(entity.ScanJob{ProjectName: "p3"}))
	require.ErrorIs(t, err, entity.ErrQueueFull)
}

func newTestDeps(t *testing.T, tempDir string) queue.Deps {
	t.Helper()
	settingsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(settingsDir, "rules.yml"), []byte(`
rules:
  - id: generic-api-key
    message: Generic API Key
    pattern: "(?i)api[_-]?key['\"]?\\s*[:=]\\s*['\"][a-z0-9]{16,}['\"]"
    severity: high
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(settingsDir, "excluded_files.yml"), []byte("excluded_files: []\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(settingsDir, "excluded_extensions.yml"), []byte("excluded_extensions: []\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(settingsDir, "false-positive.yml"), []byte("false_positive: []\n"), 0o644))

	cat, err := catalog.Load(zap.NewNop(), settingsDir)
	require.NoError(t, err)

	modelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "secrets.txt"), []byte("api_key: \"abcdefghijklmnop1234\"\nAKIAABCDEFGHIJKLMNOP\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "nonsecrets.txt"), []byte("hello world\nfunc main() {}\n"), 0o644))

	cls, err := classifier.Initialize(zap.NewNop(), classifier.Paths{
		ModelPath:         filepath.Join(modelDir, "model.gob"),
		VectorizerPath:    filepath.Join(modelDir, "vectorizer.gob"),
		SecretsDataset:    filepath.Join(modelDir, "secrets.txt"),
		NonSecretsDataset: filepath.Join(modelDir, "nonsecrets.txt"),
	})
	require.NoError(t, err)

	fetcher := fetch.New(zap.NewNop(), cat, nil, config.HubGitHub)
	cour := courier.New(zap.NewNop())

	return queue.Deps{
		Logger:     zap.NewNop(),
		Catalog:    cat,
		Classifier: cls,
		Fetcher:    fetcher,
		Courier:    cour,
		ScanOpts:   scanner.Options{},
		TempDir:    tempDir,
	}
}

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestLocalScanDeliversReportToCallback(t *testing.T) {
	var received []byte
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received, _ = readAll(r)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	deps := newTestDeps(t, t.TempDir())
	q := queue.New(zap.NewNop(), queue.Config{MaxWorkers: 2, IOPoolSize: 2}, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	archive := buildArchive(t, map[string]string{
		"config.txt": `api_key: "abcdefghijklmnop1234"`,
	})
	job := entity.ScanJob{
		ProjectName:  "local-proj",
		CallbackURL:  srv.URL,
		LocalArchive: archive,
	}
	require.NoError(t, q.Enqueue(job.ProjectName, queue.LocalItem(job)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) > 0
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, q.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, received)
}

func TestMultiScanRunsItemsSequentially(t *testing.T) {
	var order []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := readAll(r)
		env := decodeEnvelopeBody(t, body)
		mu.Lock()
		order = append(order, env["ProjectName"].(string))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	deps := newTestDeps(t, t.TempDir())
	q := queue.New(zap.NewNop(), queue.Config{MaxWorkers: 2, IOPoolSize: 2}, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	multi := entity.MultiScanJob{Items: []entity.ScanJob{
		{ProjectName: "first", CallbackURL: srv.URL, LocalArchive: buildArchive(t, map[string]string{"a.txt": "hello"})},
		{ProjectName: "second", CallbackURL: srv.URL, LocalArchive: buildArchive(t, map[string]string{"b.txt": "world"})},
		{ProjectName: "third", CallbackURL: srv.URL, LocalArchive: buildArchive(t, map[string]string{"c.txt": "!"})},
	}}
	// multi-scan items still carry LocalArchive, so they skip ref resolution
	// the same way a local_scan item does; executor dispatches on IsLocal().
	require.NoError(t, q.Enqueue("multi", queue.MultiItem(multi)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, q.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second", "third"}, order)
}

func readAll(r *http.Request) ([]byte, error) {
	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(r.Body)
	return buf.Bytes(), err
}

func decodeGzipBase64(t *testing.T, data string) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(data)
	require.NoError(t, err)
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer gz.Close()
	plain, err := io.ReadAll(gz)
	require.NoError(t, err)
	return plain
}

func decodeEnvelopeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var env struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	raw := decodeGzipBase64(t, env.Data)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
