package github

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/HartBrook/shrink/internal/config"
	"github.com/HartBrook/shrink/internal/errors"
	"github.com/cli/go-gh/v2/pkg/api"
)

// Client wraps the GitHub API for fetching inputs.
type Client struct {
	rest *api.RESTClient
}

// FetchResult contains the result of a fetch operation.
type FetchResult struct {
	Ref     config.FileRef
	Content string
	SHA     string
	Size    int
}

// NewClientWithToken creates a GitHub client with explicit token.
func NewClientWithToken(token string) (*Client, error) {
	return NewClientWithOptions(api.ClientOptions{AuthToken: token})
}

// NewClientWithOptions creates a GitHub client from explicit go-gh options.
func NewClientWithOptions(opts api.ClientOptions) (*Client, error) {
	client, err := api.NewRESTClient(opts)
	if err != nil {
		return nil, err
	}
	return &Client{rest: client}, nil
}

// NewClientFromAuthChain creates a client with the token from GetToken.
func NewClientFromAuthChain() (*Client, error) {
	token, err := GetToken()
	if err != nil {
		return nil, err
	}
	return NewClientWithToken(token)
}

// fileContentsResponse represents GitHub's contents API response.
type fileContentsResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Size     int    `json:"size"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	SHA      string `json:"sha"`
}

// DirectoryEntry represents an item in a directory listing.
type DirectoryEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
	SHA  string `json:"sha"`
	Size int    `json:"size"`
}

func contentsEndpoint(owner, repo, filePath, ref string) string {
	endpoint := fmt.Sprintf("repos/%s/%s/contents/%s", owner, repo, escapePath(filePath))
	if ref != "" {
		endpoint += "?ref=" + url.QueryEscape(ref)
	}
	return endpoint
}

// escapePath escapes each segment of p and keeps the separators.
func escapePath(p string) string {
	u := url.URL{Path: path.Clean("/" + p)}
	return u.EscapedPath()[1:]
}

// FetchFile fetches a file from a repo. Files larger than maxBytes are
// rejected from the size GitHub reports, before their content is decoded.
// A maxBytes of 0 disables the check.
func (c *Client) FetchFile(ctx context.Context, ref config.FileRef, maxBytes int64) (*FetchResult, error) {
	if ref.Owner == "" || ref.Repo == "" || ref.Path == "" {
		return nil, fmt.Errorf("owner, repo, and path are required")
	}

	var response fileContentsResponse
	err := c.rest.DoWithContext(ctx, http.MethodGet, contentsEndpoint(ref.Owner, ref.Repo, ref.Path, ref.Ref), nil, &response)
	if err != nil {
		return nil, errors.GitHubFetchFailed(ref.String(), err)
	}

	if response.Type != "file" {
		return nil, errors.GitHubFetchFailed(ref.String(), fmt.Errorf("%s is a %s, not a file", ref.Path, response.Type))
	}
	if maxBytes > 0 && int64(response.Size) > maxBytes {
		return nil, errors.OversizedInput(int64(response.Size), maxBytes)
	}
	if response.Encoding != "base64" {
		return nil, errors.GitHubFetchFailed(ref.String(), fmt.Errorf("unsupported content encoding %q", response.Encoding))
	}

	// Decode base64 content
	content, err := base64.StdEncoding.DecodeString(response.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	return &FetchResult{
		Ref:     ref,
		Content: string(content),
		SHA:     response.SHA,
		Size:    response.Size,
	}, nil
}

// ListDirectory lists contents of a directory in a repo.
// Returns nil, nil if the directory doesn't exist.
func (c *Client) ListDirectory(ctx context.Context, owner, repo, dir, ref string) ([]DirectoryEntry, error) {
	var response []DirectoryEntry
	err := c.rest.DoWithContext(ctx, http.MethodGet, contentsEndpoint(owner, repo, dir, ref), nil, &response)
	if err != nil {
		var httpErr *api.HTTPError
		if stderrors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, nil // Directory doesn't exist
		}
		return nil, errors.GitHubFetchFailed(owner+"/"+repo, err)
	}

	return response, nil
}
