// Package courier implements the Result Courier (C6): it serializes a
// ScanReport, compresses it, and delivers it to the job's callback URL with
// bounded retries, best-effort and non-durable (spec.md §4.6).
package courier

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	applog "github.com/ILYXAAA/SecretsScanner-service/internal/log"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	connectTimeout = 10 * time.Second
	readTimeout    = 30 * time.Second
	totalTimeout   = 60 * time.Second

	maxAttempts     = 3
	initialBackoff  = 1 * time.Second
	truncateBodyLen = 200
)

// envelope is the outbound wire shape: {"compressed": true, "data": <b64>,
// "original_size": n, "compressed_size": m} (spec.md §4.6 step 2).
type envelope struct {
	Compressed     bool   `json:"compressed"`
	Data           string `json:"data"`
	OriginalSize   int    `json:"original_size"`
	CompressedSize int    `json:"compressed_size"`
}

// errorPayload is the reduced shape sent through the same path when a job
// fails before or during execution.
type errorPayload struct {
	Status  string `json:"Status"`
	Message string `json:"Message"`
}

// Client delivers payloads to callback URLs. Stateless and safe for
// concurrent use by multiple workers.
type Client struct {
	logger *zap.Logger
	http   *http.Client
}

// New builds a courier Client whose HTTP transport enforces the connect/read
// timeouts from spec.md §4.6 in addition to the overall request deadline.
func New(logger *zap.Logger) *Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		DialContext: dialer.DialContext,
		ResponseHeaderTimeout: readTimeout,
	}
	return &Client{
		logger: logger,
		http:   &http.Client{Transport: transport, Timeout: totalTimeout},
	}
}

// Deliver sends v (typically an entity.ScanReport) as a gzip+base64 envelope
// to callbackURL, retrying on non-2xx or transport error with exponential
// backoff 1s/2s/4s, per spec.md §4.6 steps 3-5.
func (c *Client) Deliver(ctx context.Context, project, callbackURL string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	env, err := buildEnvelope(body)
	if err != nil {
		return fmt.Errorf("build callback envelope: %w", err)
	}

	return c.send(ctx, project, callbackURL, env)
}

// DeliverError sends the reduced {"Status": "Error", "Message": ...} shape
// through the same compressed envelope path.
func (c *Client) DeliverError(ctx context.Context, project, callbackURL, message string) error {
	return c.Deliver(ctx, project, callbackURL, errorPayload{Status: "Error", Message: message})
}

func buildEnvelope(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(body); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}

	env := envelope{
		Compressed:     true,
		Data:           base64.StdEncoding.EncodeToString(buf.Bytes()),
		OriginalSize:   len(body),
		CompressedSize: buf.Len(),
	}
	return json.Marshal(env)
}

func (c *Client) send(ctx context.Context, project, callbackURL string, payload []byte) error {
	attempt := 0
	backoff := retry.NewExponential(initialBackoff)
	backoff = retry.WithMaxRetries(maxAttempts-1, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		applog.InfoDeliver(c.logger, "delivering scan result", project, callbackURL, attempt)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(payload))
		if err != nil {
			return err // non-retryable: malformed request
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Compressed", "gzip-base64")

		resp, doErr := c.http.Do(req)
		if doErr != nil {
			applog.ErrorDeliver(c.logger, doErr, project, callbackURL, attempt)
			return retry.RetryableError(doErr)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, truncateBodyLen))
		deliverErr := fmt.Errorf("callback responded %d: %s%s", resp.StatusCode, respBody, categoryHint(resp.StatusCode))
		applog.ErrorDeliver(c.logger, deliverErr, project, callbackURL, attempt)
		return retry.RetryableError(deliverErr)
	})

	if err != nil {
		applog.CriticalDeliverExhausted(c.logger, project, callbackURL, attempt)
		return err
	}
	return nil
}

// categoryHint annotates a handful of status codes the courier commonly
// sees, matching the classes original_source callers treat specially.
func categoryHint(status int) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return " (payload too large for callback receiver)"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return " (callback receiver unavailable, likely transient)"
	default:
		return ""
	}
}
