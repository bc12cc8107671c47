package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	applog "github.com/ILYXAAA/SecretsScanner-service/internal/log"
)

// resolveGit implements check_ref_and_resolve_git: it shells out to the
// system git binary's `ls-remote` and scans the output lines, matching
// original_source's subprocess-based resolution exactly (no network call
// beyond what ls-remote itself performs).
func (c *Client) resolveGit(ctx context.Context, traceID, repoURL string, refType entity.RefType, ref string) (bool, string, string, error) {
	var args []string
	switch refType {
	case entity.RefTag:
		args = []string{"ls-remote", "--tags", repoURL}
	case entity.RefBranch:
		args = []string{"ls-remote", "--heads", repoURL}
	case entity.RefCommit:
		args = []string{"ls-remote", repoURL}
	default:
		return false, "", fmt.Sprintf("invalid ref type: %s", refType), nil
	}

	applog.InfoResolveRef(c.logger, "resolving ref via ls-remote", traceID, repoURL, string(refType), ref)

	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return false, "", "", nil
	}

	lines := strings.Split(stdout.String(), "\n")

	if refType == entity.RefCommit {
		for _, line := range lines {
			if strings.HasPrefix(line, ref) {
				return true, ref, "", nil
			}
		}
		return false, "", "", nil
	}

	suffix := "/" + ref
	for _, line := range lines {
		if strings.HasSuffix(line, suffix) {
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			return true, fields[0], "", nil
		}
	}
	return false, "", "", nil
}

// fetchGitArchive downloads {repo_url}/archive/{commit_id}.zip over plain
// HTTPS and extracts it, with no authentication (public platform variant).
func (c *Client) fetchGitArchive(ctx context.Context, traceID, repoURL, commitID, scratchDir string) (string, error) {
	zipURL := fmt.Sprintf("%s/archive/%s.zip", strings.TrimRight(repoURL, "/"), commitID)

	applog.InfoFetch(c.logger, "downloading archive over https", traceID, repoURL, commitID, "none")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, zipURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.downloadHTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: download returned status %d", entity.ErrFetch, resp.StatusCode)
	}

	return extractZipStream(resp.Body, scratchDir, c.cat)
}
