// Package githubapi provides a small typed client for the three GitHub
// REST endpoints the bridge exposes. It performs no retries and no
// caching; upstream failures are surfaced to the caller as-is.
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

const (
	defaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"
	acceptHeader   = "application/vnd.github.v3+json"
	userAgent      = "ghbridge/0.1.0"
)

// Config configures a Client.
type Config struct {
	// Token is the pre-issued personal access token. Required.
	Token string
	// BaseURL overrides the GitHub API endpoint. Tests point this at a
	// fixture server.
	BaseURL string
	// HTTPClient overrides the transport. A 30s-timeout client is used
	// when nil.
	HTTPClient *http.Client
}

// Client issues authenticated requests against the GitHub REST API.
// The token is held privately and never logged.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client from cfg. The token must be present; everything
// else has defaults.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("githubapi: token must not be empty")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   cfg.Token,
		http:    httpClient,
	}, nil
}

// SearchRepositories runs a repository search and returns the upstream
// result list and pagination metadata.
func (c *Client) SearchRepositories(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	q := url.Values{}
	q.Set("q", req.query)
	q.Set("page", strconv.Itoa(req.page))
	q.Set("per_page", strconv.Itoa(req.perPage))

	body, err := c.do(ctx, http.MethodGet, "/search/repositories", q, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		TotalCount        int             `json:"total_count"`
		IncompleteResults bool            `json:"incomplete_results"`
		Items             json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "decode search response")
	}

	items := jx.Raw(payload.Items)
	count, err := countArray(items)
	if err != nil {
		return nil, errors.Wrap(err, "decode search items")
	}

	return &SearchResult{
		TotalCount:        payload.TotalCount,
		IncompleteResults: payload.IncompleteResults,
		Page:              req.page,
		PerPage:           req.perPage,
		Items:             items,
		ItemCount:         count,
		Raw:               jx.Raw(body),
	}, nil
}

// GetContents fetches a file or directory. The result shape is tagged:
// upstream returns an object for a file and an array for a directory.
// File content comes back base64-encoded and is not decoded here.
func (c *Client) GetContents(ctx context.Context, req ContentsRequest) (*Contents, error) {
	path := "/repos/" + url.PathEscape(req.owner) + "/" + url.PathEscape(req.repo) +
		"/contents/" + escapeContentPath(req.path)

	var q url.Values
	if req.ref != "" {
		q = url.Values{}
		q.Set("ref", req.ref)
	}

	body, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}

	result := &Contents{Raw: jx.Raw(body)}
	switch jx.DecodeBytes(body).Next() {
	case jx.Array:
		if err := json.Unmarshal(body, &result.Dir); err != nil {
			return nil, errors.Wrap(err, "decode directory listing")
		}
		if result.Dir == nil {
			result.Dir = []DirEntry{}
		}
	case jx.Object:
		var file FileContent
		if err := json.Unmarshal(body, &file); err != nil {
			return nil, errors.Wrap(err, "decode file entry")
		}
		result.File = &file
	default:
		return nil, errors.New("unexpected contents response shape")
	}
	return result, nil
}

// CreatePullRequest opens one pull request. This call is not
// idempotent: repeating it creates duplicates, or fails with a 422 once
// a pull request exists for the branch pair.
func (c *Client) CreatePullRequest(ctx context.Context, req PullRequestRequest) (*PullRequest, error) {
	path := "/repos/" + url.PathEscape(req.owner) + "/" + url.PathEscape(req.repo) + "/pulls"
	payload := map[string]string{
		"title": req.title,
		"head":  req.head,
		"base":  req.base,
		"body":  req.body,
	}

	body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}

	var pr PullRequest
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, errors.Wrap(err, "decode pull request response")
	}
	pr.Raw = jx.Raw(body)
	return &pr, nil
}

// do issues one request and returns the response body. Non-2xx
// responses become UpstreamError; requests that never complete become
// TransportError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		reqBody = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// upstreamError extracts GitHub's error message from a non-2xx body.
func upstreamError(status int, body []byte) *UpstreamError {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return &UpstreamError{StatusCode: status, Message: e.Message, DocURL: e.DocURL}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &UpstreamError{StatusCode: status, Message: msg}
}

// escapeContentPath escapes a repository path segment by segment,
// keeping the slashes that separate directories.
func escapeContentPath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// countArray counts the elements of a raw JSON array.
func countArray(raw jx.Raw) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	n := 0
	d := jx.DecodeBytes(raw)
	if err := d.Arr(func(d *jx.Decoder) error {
		n++
		return d.Skip()
	}); err != nil {
		return 0, err
	}
	return n, nil
}
