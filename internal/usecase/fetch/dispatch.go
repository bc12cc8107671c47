package fetch

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ILYXAAA/SecretsScanner-service/config"
	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
)

// ResolveRef validates ref against the configured hosting platform and
// resolves it to a commit id (spec.md §4.4).
func (c *Client) ResolveRef(ctx context.Context, traceID, repoURL string, refType entity.RefType, ref string) (exists bool, commitID, message string, err error) {
	switch c.hub {
	case config.HubAzure:
		return c.resolveAzure(ctx, traceID, repoURL, refType, ref)
	case config.HubGitHub:
		return c.resolveGit(ctx, traceID, repoURL, refType, ref)
	default:
		return false, "", "", fmt.Errorf("%w: unknown hub type %q", entity.ErrValidation, c.hub)
	}
}

// FetchArchive downloads and extracts the repository at commitID into
// scratchDir, dispatching to the configured platform variant.
func (c *Client) FetchArchive(ctx context.Context, traceID, repoURL, commitID, scratchDir string) (string, error) {
	switch c.hub {
	case config.HubAzure:
		return c.fetchAzureArchive(ctx, traceID, repoURL, commitID, scratchDir)
	case config.HubGitHub:
		return c.fetchGitArchive(ctx, traceID, repoURL, commitID, scratchDir)
	default:
		return "", fmt.Errorf("%w: unknown hub type %q", entity.ErrValidation, c.hub)
	}
}

// ExtractLocalArchive extracts an in-memory archive blob directly, for
// local_scan jobs that skip ref resolution and network fetch entirely
// (spec.md §3, ScanJob.IsLocal).
func (c *Client) ExtractLocalArchive(archive []byte, scratchDir string) (string, error) {
	return extractZipStream(bytes.NewReader(archive), scratchDir, c.cat)
}
