// Package fetch implements the Ref Resolver / Fetcher (C4): resolving a
// symbolic ref to a commit id against either platform variant, then
// downloading and safely extracting the repository archive.
package fetch

import (
	"net/http"
	"time"

	"github.com/ILYXAAA/SecretsScanner-service/config"
	"github.com/ILYXAAA/SecretsScanner-service/internal/credentials"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/catalog"
	"go.uber.org/zap"
)

const (
	resolveTimeout = 20 * time.Second
	downloadTimeout = 5 * time.Minute
)

// Client resolves refs and fetches archives for whichever platform variant
// cfg.Hub selects. It holds no per-job state and is safe for concurrent use
// by multiple workers.
type Client struct {
	logger *zap.Logger
	cat    *catalog.Catalog
	creds  *credentials.Provider
	hub    config.HubType

	resolveHTTP  *http.Client
	downloadHTTP *http.Client
}

// New builds a fetch Client. creds may be nil when hub is HubGitHub, since
// the public-platform variant authenticates no requests.
func New(logger *zap.Logger, cat *catalog.Catalog, creds *credentials.Provider, hub config.HubType) *Client {
	return &Client{
		logger: logger,
		cat:    cat,
		creds:  creds,
		hub:    hub,
		resolveHTTP: &http.Client{
			Timeout: resolveTimeout,
			Transport: &http.Transport{
				TLSClientConfig: insecureTLSConfig(),
			},
		},
		downloadHTTP: &http.Client{
			Timeout: downloadTimeout,
			Transport: &http.Transport{
				TLSClientConfig: insecureTLSConfig(),
			},
		},
	}
}
