package github

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"

	"ghbridge/server/internal/modules"
	"ghbridge/server/pkg/githubapi"
)

const githubVersion = "2022-11-28"

var toJSON = modules.ToJSON

// GitHubModule implements the Module interface for the GitHub REST API
type GitHubModule struct {
	client   *githubapi.Client
	handlers map[string]toolHandler
}

// New creates the module around an already-authenticated client.
func New(client *githubapi.Client) *GitHubModule {
	m := &GitHubModule{client: client}
	m.handlers = map[string]toolHandler{
		"search_repositories": m.searchRepositories,
		"get_file_contents":   m.getFileContents,
		"create_pull_request": m.createPullRequest,
	}
	return m
}

func (m *GitHubModule) Name() string { return "github" }
func (m *GitHubModule) Description() string {
	return "GitHub API - Repository search, file contents, pull requests"
}
func (m *GitHubModule) APIVersion() string { return githubVersion }
func (m *GitHubModule) Tools() []modules.Tool {
	return toolDefinitions
}

func (m *GitHubModule) ExecuteTool(ctx context.Context, name string, params map[string]any) (string, error) {
	handler, ok := m.handlers[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return handler(ctx, params)
}

// ToCompact converts JSON result to compact format.
func (m *GitHubModule) ToCompact(toolName string, jsonResult string) string {
	return formatCompact(toolName, jsonResult)
}

func (m *GitHubModule) Resources() []modules.Resource { return nil }
func (m *GitHubModule) ReadResource(ctx context.Context, uri string) (string, error) {
	return "", fmt.Errorf("resources not supported")
}

// =============================================================================
// Tool Definitions
// =============================================================================

type toolHandler func(ctx context.Context, params map[string]any) (string, error)

var toolDefinitions = []modules.Tool{
	{
		Name:        "search_repositories",
		Description: "Search GitHub repositories by query. Supports GitHub search syntax (e.g., 'language:go stars:>100'). Returns paginated results.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"query":   {Type: "string", Description: "Search query using GitHub search syntax"},
				"page":    {Type: "number", Description: "Page number for pagination (default: 1)"},
				"perPage": {Type: "number", Description: "Results per page (1-100, default: 30)"},
			},
			Required: []string{"query"},
		},
	},
	{
		Name:        "get_file_contents",
		Description: "Get the contents of a file or directory in a repository. Files are returned with base64-encoded content; directories as an entry listing.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"owner":  {Type: "string", Description: "Repository owner (user or organization)"},
				"repo":   {Type: "string", Description: "Repository name"},
				"path":   {Type: "string", Description: "Path to the file or directory"},
				"branch": {Type: "string", Description: "Branch, tag, or commit SHA (default: repository default branch)"},
			},
			Required: []string{"owner", "repo", "path"},
		},
	},
	{
		Name:        "create_pull_request",
		Description: "Create a new pull request in a repository.",
		Annotations: modules.AnnotateCreate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"owner": {Type: "string", Description: "Repository owner (user or organization)"},
				"repo":  {Type: "string", Description: "Repository name"},
				"title": {Type: "string", Description: "Pull request title"},
				"head":  {Type: "string", Description: "Branch containing the changes"},
				"base":  {Type: "string", Description: "Branch to merge the changes into"},
				"body":  {Type: "string", Description: "Pull request description (optional)"},
			},
			Required: []string{"owner", "repo", "title", "head", "base"},
		},
	},
}

// =============================================================================
// Tool Handlers
// =============================================================================

func (m *GitHubModule) searchRepositories(ctx context.Context, params map[string]any) (string, error) {
	req, err := githubapi.NewSearchRequest(
		strParam(params, "query"),
		intParam(params, "page"),
		intParam(params, "perPage"),
	)
	if err != nil {
		return "", err
	}

	res, err := m.client.SearchRepositories(ctx, req)
	if err != nil {
		return "", err
	}

	out := struct {
		TotalCount        int             `json:"total_count"`
		IncompleteResults bool            `json:"incomplete_results"`
		Page              int             `json:"page"`
		PerPage           int             `json:"per_page"`
		Items             json.RawMessage `json:"items"`
	}{
		TotalCount:        res.TotalCount,
		IncompleteResults: res.IncompleteResults,
		Page:              res.Page,
		PerPage:           res.PerPage,
		Items:             json.RawMessage(res.Items),
	}
	return toJSON(out)
}

func (m *GitHubModule) getFileContents(ctx context.Context, params map[string]any) (string, error) {
	req, err := githubapi.NewContentsRequest(
		strParam(params, "owner"),
		strParam(params, "repo"),
		strParam(params, "path"),
		strParam(params, "branch"),
	)
	if err != nil {
		return "", err
	}

	res, err := m.client.GetContents(ctx, req)
	if err != nil {
		return "", err
	}

	if res.IsDir() {
		out := struct {
			Kind    string          `json:"kind"`
			Entries json.RawMessage `json:"entries"`
		}{Kind: "directory", Entries: json.RawMessage(res.Raw)}
		return toJSON(out)
	}

	out := struct {
		Kind  string          `json:"kind"`
		Entry json.RawMessage `json:"entry"`
	}{Kind: "file", Entry: json.RawMessage(res.Raw)}
	return toJSON(out)
}

func (m *GitHubModule) createPullRequest(ctx context.Context, params map[string]any) (string, error) {
	req, err := githubapi.NewPullRequestRequest(
		strParam(params, "owner"),
		strParam(params, "repo"),
		strParam(params, "title"),
		strParam(params, "head"),
		strParam(params, "base"),
		strParam(params, "body"),
	)
	if err != nil {
		return "", err
	}

	res, err := m.client.CreatePullRequest(ctx, req)
	if err != nil {
		return "", err
	}
	if len(res.Raw) == 0 {
		return "", errors.New("empty pull request response")
	}
	return string(res.Raw), nil
}

// =============================================================================
// Parameter Helpers
// =============================================================================

func strParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// intParam reads a numeric parameter. JSON numbers arrive as float64.
func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
