package controller_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ILYXAAA/SecretsScanner-service/internal/controller"
	"github.com/ILYXAAA/SecretsScanner-service/internal/controller/mocks"
	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/queue"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const testAPIKey = "test-key"

func newService(t *testing.T) (*mocks.MockQueueClient, *mocks.MockRefResolver, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	q := mocks.NewMockQueueClient(ctrl)
	resolver := mocks.NewMockRefResolver(ctrl)
	h := controller.New(zap.NewNop(), q, resolver, testAPIKey).Router()
	return q, resolver, h
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if withKey {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var scanBody = map[string]string{
	"project_name": "p", "repo_url": "https://example.com/r", "ref_type": "branch", "ref": "main", "callback_url": "https://cb",
}

func TestScanRejectsMissingAPIKey(t *testing.T) {
	_, _, h := newService(t)
	rec := doRequest(t, h, http.MethodPost, "/scan", scanBody, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScanAcceptsValidRequest(t *testing.T) {
	q, resolver, h := newService(t)
	resolver.EXPECT().ResolveRef(gomock.Any(), gomock.Any(), "https://example.com/r", entity.RefBranch, "main").
		Return(true, "abc123", "", nil)
	q.EXPECT().Enqueue("p", gomock.Any()).DoAndReturn(func(project string, item queue.Item) error {
		require.Equal(t, queue.KindSingle, item.Kind)
		require.Equal(t, "abc123", item.Job.CommitID)
		return nil
	})

	rec := doRequest(t, h, http.MethodPost, "/scan", scanBody, true)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestScanRejectsUnresolvableRef(t *testing.T) {
	q, resolver, h := newService(t)
	resolver.EXPECT().ResolveRef(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, "", "branch not found", nil)
	// Enqueue must never be called.
	q.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Times(0)

	rec := doRequest(t, h, http.MethodPost, "/scan", scanBody, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanRejectsAtQueueFull(t *testing.T) {
	q, resolver, h := newService(t)
	resolver.EXPECT().ResolveRef(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(true, "abc", "", nil)
	q.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(entity.ErrQueueFull)

	rec := doRequest(t, h, http.MethodPost, "/scan", scanBody, true)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMultiScanRejectsWhenAnyItemInvalid(t *testing.T) {
	q, _, h := newService(t)
	q.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Times(0)

	body := map[string]any{
		"items": []map[string]string{
			{"project_name": "p1", "repo_url": "https://example.com/r", "ref_type": "branch", "ref": "main", "callback_url": "https://cb"},
			{"project_name": "p2", "repo_url": "https://example.com/r", "ref_type": "bogus", "ref": "main", "callback_url": "https://cb"},
		},
	}
	rec := doRequest(t, h, http.MethodPost, "/multi_scan", body, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMultiScanAcceptsValidBatch(t *testing.T) {
	q, resolver, h := newService(t)
	resolver.EXPECT().ResolveRef(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(true, "abc", "", nil).Times(2)
	q.EXPECT().Enqueue("multi_scan", gomock.Any()).DoAndReturn(func(project string, item queue.Item) error {
		require.Equal(t, queue.KindMulti, item.Kind)
		require.Len(t, item.Multi.Items, 2)
		return nil
	})

	body := map[string]any{
		"items": []map[string]string{
			{"project_name": "p1", "repo_url": "https://example.com/r", "ref_type": "branch", "ref": "main", "callback_url": "https://cb"},
			{"project_name": "p2", "repo_url": "https://example.com/r", "ref_type": "tag", "ref": "v1", "callback_url": "https://cb"},
		},
	}
	rec := doRequest(t, h, http.MethodPost, "/multi_scan", body, true)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLocalScanReadsArchiveBeforeEnqueue(t *testing.T) {
	q, _, h := newService(t)
	q.EXPECT().Enqueue("local-proj", gomock.Any()).DoAndReturn(func(project string, item queue.Item) error {
		require.Equal(t, queue.KindLocal, item.Kind)
		require.Equal(t, []byte("fake-zip-bytes"), item.Job.LocalArchive)
		return nil
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("project_name", "local-proj"))
	require.NoError(t, mw.WriteField("callback_url", "https://cb"))
	part, err := mw.CreateFormFile("archive", "repo.zip")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-zip-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/local_scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthReportsQueueStats(t *testing.T) {
	q, _, h := newService(t)
	q.EXPECT().Depth().Return(3)
	q.EXPECT().MaxWorkers().Return(10)
	q.EXPECT().ActiveWorkers().Return(2)

	rec := doRequest(t, h, http.MethodGet, "/health", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status        string `json:"status"`
		QueueSize     int    `json:"queue_size"`
		MaxWorkers    int    `json:"max_workers"`
		ActiveWorkers int    `json:"active_workers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 3, resp.QueueSize)
	require.Equal(t, 10, resp.MaxWorkers)
	require.Equal(t, 2, resp.ActiveWorkers)
}
