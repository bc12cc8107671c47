package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	applog "github.com/ILYXAAA/SecretsScanner-service/internal/log"
)

// azureRepo is the (server, collection, project, repository) tuple parsed
// out of a self-hosted platform URL, locating the `_git` path segment.
type azureRepo struct {
	Server     string
	Collection string
	Project    string
	Repository string
}

// parseAzureURL implements original_source's parse_azure_devops_url: the
// element after "_git" is the repository, the one before it is the project,
// everything earlier is the collection.
func parseAzureURL(repoURL string) (azureRepo, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return azureRepo{}, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	gitIdx := -1
	for i, p := range parts {
		if p == "_git" {
			gitIdx = i
			break
		}
	}
	if gitIdx == -1 {
		return azureRepo{}, fmt.Errorf("%w: URL does not contain '_git'", entity.ErrValidation)
	}
	if gitIdx+1 >= len(parts) {
		return azureRepo{}, fmt.Errorf("%w: URL has no repository name after '_git'", entity.ErrValidation)
	}
	if gitIdx < 1 {
		return azureRepo{}, fmt.Errorf("%w: not enough path segments before '_git'", entity.ErrValidation)
	}

	return azureRepo{
		Server:     u.Host,
		Collection: strings.Join(parts[:gitIdx-1], "/"),
		Project:    parts[gitIdx-1],
		Repository: parts[gitIdx+1],
	}, nil
}

func (r azureRepo) baseAPIURL() string {
	return fmt.Sprintf("https://%s/%s/%s/_apis/git/repositories/%s", r.Server, r.Collection, r.Project, r.Repository)
}

type azureRefsResponse struct {
	Count int `json:"count"`
	Value []struct {
		ObjectID string `json:"objectId"`
	} `json:"value"`
}

type azureAnnotatedTagResponse struct {
	TaggedObject struct {
		ObjectID   string `json:"objectId"`
		ObjectType string `json:"objectType"`
	} `json:"taggedObject"`
}

type azureCommitResponse struct {
	CommitID string `json:"commitId"`
}

// resolveAzure implements check_ref_and_resolve_azure: it tries the auth
// fallback chain in order, returning on the first method that produces a
// decisive 2xx answer.
func (c *Client) resolveAzure(ctx context.Context, traceID, repoURL string, refType entity.RefType, ref string) (bool, string, string, error) {
	repo, err := parseAzureURL(repoURL)
	if err != nil {
		return false, "", "", err
	}

	var lastMessage string
	for _, method := range authMethods {
		auth, ok := c.buildAuth(method)
		if !ok {
			continue
		}

		applog.InfoResolveRef(c.logger, "resolving ref against self-hosted platform", traceID, repoURL, string(refType), ref)

		exists, commitID, message, decisive, err := c.resolveAzureOnce(ctx, repo, refType, ref, auth)
		if err != nil {
			return false, "", "", err
		}
		if !decisive {
			lastMessage = message
			continue
		}
		return exists, commitID, message, nil
	}

	return false, "", lastMessage, nil
}

// resolveAzureOnce performs one resolution attempt with one auth method.
// decisive=false means the HTTP call itself was rejected (bad creds/access)
// and the next auth method in the chain should be tried.
func (c *Client) resolveAzureOnce(ctx context.Context, repo azureRepo, refType entity.RefType, ref string, auth authenticator) (exists bool, commitID, message string, decisive bool, err error) {
	base := repo.baseAPIURL()

	switch refType {
	case entity.RefBranch:
		resp, body, status, callErr := c.getAzure(ctx, fmt.Sprintf("%s/refs?filter=heads/%s&api-version=5.1-preview.1", base, ref), auth)
		if callErr != nil {
			return false, "", "", false, callErr
		}
		defer resp.Body.Close()
		if ok, msg := decisiveStatus(status); !ok {
			return false, "", msg, false, nil
		}
		var parsed azureRefsResponse
		if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil {
			return false, "", "", true, jsonErr
		}
		if parsed.Count == 0 {
			return false, "", "branch not found", true, nil
		}
		return true, parsed.Value[0].ObjectID, "", true, nil

	case entity.RefTag:
		resp, body, status, callErr := c.getAzure(ctx, fmt.Sprintf("%s/refs?filter=tags/%s&api-version=5.1-preview.1", base, ref), auth)
		if callErr != nil {
			return false, "", "", false, callErr
		}
		defer resp.Body.Close()
		if ok, msg := decisiveStatus(status); !ok {
			return false, "", msg, false, nil
		}
		var parsed azureRefsResponse
		if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil {
			return false, "", "", true, jsonErr
		}
		if parsed.Count == 0 {
			return false, "", "tag not found", true, nil
		}
		tagObjectID := parsed.Value[0].ObjectID

		tagResp, tagBody, tagStatus, tagErr := c.getAzure(ctx, fmt.Sprintf("%s/annotatedtags/%s?api-version=6.1-preview", base, tagObjectID), auth)
		if tagErr != nil {
			return true, tagObjectID, "could not resolve annotated tag, returning tag object id", true, nil
		}
		defer tagResp.Body.Close()
		if tagStatus != http.StatusOK {
			return true, tagObjectID, "could not resolve annotated tag, returning tag object id", true, nil
		}
		var annotated azureAnnotatedTagResponse
		if jsonErr := json.Unmarshal(tagBody, &annotated); jsonErr != nil {
			return true, tagObjectID, "could not resolve annotated tag, returning tag object id", true, nil
		}
		if annotated.TaggedObject.ObjectType == "commit" {
			return true, annotated.TaggedObject.ObjectID, "", true, nil
		}
		return true, tagObjectID, "not a commit object, but the tag was found", true, nil

	case entity.RefCommit:
		resp, body, status, callErr := c.getAzure(ctx, fmt.Sprintf("%s/commits/%s?api-version=5.1-preview.1", base, ref), auth)
		if callErr != nil {
			return false, "", "", false, callErr
		}
		defer resp.Body.Close()
		if status != http.StatusOK {
			return false, "", "", false, nil
		}
		var parsed azureCommitResponse
		if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil {
			return false, "", "", true, jsonErr
		}
		if parsed.CommitID == "" {
			return false, "", "commit not found", true, nil
		}
		return true, parsed.CommitID, "", true, nil

	default:
		return false, "", fmt.Sprintf("invalid ref type: %s", refType), true, nil
	}
}

// decisiveStatus reports whether a response status should end the auth
// chain search (any of 200/201/202/203) versus continuing to the next
// method, and builds the message for the 401/403 vs generic case.
func decisiveStatus(status int) (ok bool, message string) {
	switch status {
	case 200, 201, 202, 203:
		return true, ""
	case 401, 403:
		return false, fmt.Sprintf("Access Denied: [%d]. Verify PAT/NTLM access.", status)
	default:
		return false, fmt.Sprintf("request returned status %d, check credentials or repository access", status)
	}
}

func (c *Client) getAzure(ctx context.Context, url string, auth authenticator) (*http.Response, []byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, 0, err
	}
	auth.apply(req)

	resp, err := c.resolveHTTP.Do(req)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %v", entity.ErrFetch, err)
	}

	body, err := readAll(resp)
	return resp, body, resp.StatusCode, err
}

// fetchAzureArchive downloads the commit-pinned zip via the items endpoint
// and extracts it into scratchDir, trying the same auth fallback chain.
func (c *Client) fetchAzureArchive(ctx context.Context, traceID, repoURL, commitID, scratchDir string) (string, error) {
	repo, err := parseAzureURL(repoURL)
	if err != nil {
		return "", err
	}

	apiURL := fmt.Sprintf("%s/items?scopePath=%%2F&versionDescriptor.version=%s&versionDescriptor.versionType=commit&$format=zip&download=true&api-version=5.1-preview.1",
		repo.baseAPIURL(), url.QueryEscape(commitID))

	var lastErr error
	for _, method := range authMethods {
		auth, ok := c.buildAuth(method)
		if !ok {
			continue
		}

		applog.InfoFetch(c.logger, "downloading archive from self-hosted platform", traceID, repoURL, commitID, string(method))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return "", err
		}
		auth.apply(req)

		resp, err := c.downloadHTTP.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: download returned status %d", entity.ErrFetch, resp.StatusCode)
			continue
		}

		extracted, err := extractZipStream(resp.Body, scratchDir, c.cat)
		resp.Body.Close()
		if err != nil {
			return "", err
		}
		return extracted, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no usable authentication method for self-hosted platform", entity.ErrAuthRejected)
	}
	return "", lastErr
}
