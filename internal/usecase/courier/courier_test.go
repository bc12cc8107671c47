package courier_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/courier"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Compressed     bool   `json:"compressed"`
	Data           string `json:"data"`
	OriginalSize   int    `json:"original_size"`
	CompressedSize int    `json:"compressed_size"`
}

func decodeEnvelope(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.True(t, env.Compressed)

	raw, err := base64.StdEncoding.DecodeString(env.Data)
	require.NoError(t, err)

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer gz.Close()

	plain, err := io.ReadAll(gz)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(plain, &out))
	return out
}

func TestDeliverSuccessOnFirstAttempt(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "gzip-base64", r.Header.Get("X-Compressed"))
		body, _ := io.ReadAll(r.Body)
		received = body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := courier.New(zap.NewNop())
	err := c.Deliver(context.Background(), "myproj", srv.URL, map[string]string{"hello": "world"})
	require.NoError(t, err)

	decoded := decodeEnvelope(t, received)
	require.Equal(t, "world", decoded["hello"])
}

func TestDeliverRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := courier.New(zap.NewNop())
	err := c.Deliver(context.Background(), "myproj", srv.URL, map[string]string{"a": "b"})
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDeliverExhaustsRetriesAndReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := courier.New(zap.NewNop())
	err := c.Deliver(context.Background(), "myproj", srv.URL, map[string]string{"a": "b"})
	require.Error(t, err)
}

func TestDeliverErrorSendsErrorShape(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := courier.New(zap.NewNop())
	err := c.DeliverError(context.Background(), "myproj", srv.URL, "boom")
	require.NoError(t, err)

	decoded := decodeEnvelope(t, received)
	require.Equal(t, "Error", decoded["Status"])
	require.Equal(t, "boom", decoded["Message"])
}
