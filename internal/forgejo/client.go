// Package forgejo provides an HTTP client for the slice of the Forgejo
// contents API this service relies on: read a file together with its current
// revision token, conditionally write it back, and fetch raw bytes.
//
// Writes are optimistic. PutFile sends the blob SHA observed at read time and
// the server rejects the write when the path has moved on; an empty SHA asks
// the server to create the path and fails if it already exists. Each write is
// atomic on the server side: either the path holds the new content under a
// new token, or nothing changed.
package forgejo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a single repository on a single Forgejo instance.
type Client struct {
	repoURL  string
	apiBase  string
	owner    string
	repo     string
	branch   string
	username string
	password string
	http     *http.Client
}

// Options configures a Client. RepoURL is the web root of the repository
// (raw downloads hang off it); APIBase is the instance's API root, e.g.
// "https://host/api/v1".
type Options struct {
	RepoURL  string
	APIBase  string
	Owner    string
	Repo     string
	Branch   string
	Username string
	Password string
	Timeout  time.Duration
}

// New creates a client for one repository. A zero Timeout defaults to 30s.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		repoURL:  strings.TrimRight(opts.RepoURL, "/"),
		apiBase:  strings.TrimRight(opts.APIBase, "/"),
		owner:    opts.Owner,
		repo:     opts.Repo,
		branch:   opts.Branch,
		username: opts.Username,
		password: opts.Password,
		http:     &http.Client{Timeout: timeout},
	}
}

// Branch returns the branch all reads and writes go through.
func (c *Client) Branch() string {
	return c.branch
}

// FileURL returns the web address of a file on the configured branch,
// or "" when no repository web root was configured.
func (c *Client) FileURL(path string) string {
	if c.repoURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/src/branch/%s/%s", c.repoURL, url.PathEscape(c.branch), escapePath(path))
}

// ------------------------------------------------------------------
// Contents API
// ------------------------------------------------------------------

// contentsResponse is the subset of the contents API response we consume.
type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// GetFile reads path on the configured branch and returns its bytes together
// with the revision token the server currently holds for it. A missing path
// returns ErrNotFound.
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	u := c.contentsURL(path) + "?ref=" + url.QueryEscape(c.branch)
	body, status, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("forgejo: get %s: %w", path, err)
	}
	switch {
	case status == http.StatusNotFound:
		return nil, "", ErrNotFound
	case status != http.StatusOK:
		return nil, "", &StatusError{StatusCode: status, Body: trimBody(body)}
	}

	var cr contentsResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, "", fmt.Errorf("forgejo: decode contents response: %w", err)
	}
	// The server wraps long base64 payloads in newlines.
	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("forgejo: decode base64 content: %w", err)
	}
	return content, cr.SHA, nil
}

// PutFile writes content to path on the configured branch. A non-empty sha
// must match the server's current token for the path; an empty sha creates
// the path and fails with ErrConflict if it already exists. message becomes
// the commit message recorded for the write.
func (c *Client) PutFile(ctx context.Context, path string, content []byte, sha, message string) error {
	payload, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     sha,
	})
	if err != nil {
		return fmt.Errorf("forgejo: marshal put request: %w", err)
	}
	body, status, err := c.do(ctx, http.MethodPut, c.contentsURL(path), payload)
	if err != nil {
		return fmt.Errorf("forgejo: put %s: %w", path, err)
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return &ConflictError{Path: path, Reason: trimBody(body)}
	default:
		return &StatusError{StatusCode: status, Body: trimBody(body)}
	}
}

// ------------------------------------------------------------------
// Raw downloads
// ------------------------------------------------------------------

// GetRaw fetches path through the raw endpoint. Cheaper than GetFile when no
// revision token is needed; never use it to seed a conditional write.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	u := fmt.Sprintf("%s/raw/%s/%s", c.repoURL, url.PathEscape(c.branch), escapePath(path))
	body, status, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("forgejo: get raw %s: %w", path, err)
	}
	switch {
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status != http.StatusOK:
		return nil, &StatusError{StatusCode: status, Body: trimBody(body)}
	}
	return body, nil
}

// ------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------

func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.apiBase, c.owner, c.repo, escapePath(path))
}

// escapePath escapes each path segment while keeping the separators, so
// file names with spaces survive the round trip.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

func trimBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		s = s[:512] + "..."
	}
	return s
}
