package githubapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const readmeText = "Hello World!\n\nHello World repository for Git tutorial\n"

// fixtureServer serves canned GitHub API responses and records how
// many requests it saw.
func fixtureServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	prCreated := false

	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "token test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Bad credentials","documentation_url":"https://docs.github.com"}`)
			return
		}
		perPage := r.URL.Query().Get("per_page")
		n := 3
		if perPage == "1" {
			n = 1
		}
		items := make([]map[string]any, n)
		for i := range items {
			items[i] = map[string]any{"full_name": fmt.Sprintf("octocat/repo-%d", i), "stargazers_count": 100 - i}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"total_count":        1234,
			"incomplete_results": false,
			"items":              items,
		})
	})
	mux.HandleFunc("/repos/octocat/Hello-World/contents/README", func(w http.ResponseWriter, r *http.Request) {
		calls++
		encoded := base64.StdEncoding.EncodeToString([]byte(readmeText))
		json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"name":     "README",
			"path":     "README",
			"sha":      "980a0d5f19a64b4b30a87d4206aade58726b60e3",
			"size":     len(readmeText),
			"encoding": "base64",
			"content":  encoded,
		})
	})
	mux.HandleFunc("/repos/octocat/Hello-World/contents/docs", func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode([]map[string]any{
			{"type": "file", "name": "a.md", "path": "docs/a.md", "size": 12},
			{"type": "dir", "name": "img", "path": "docs/img"},
		})
	})
	mux.HandleFunc("/repos/octocat/Hello-World/contents/", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found","documentation_url":"https://docs.github.com/rest"}`)
	})
	mux.HandleFunc("/repos/octocat/Hello-World/pulls", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if prCreated {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"message":"Validation Failed: A pull request already exists for octocat:feature."}`)
			return
		}
		prCreated = true
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"number":   42,
			"state":    "open",
			"title":    "Add feature",
			"html_url": "https://github.com/octocat/Hello-World/pull/42",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{Token: "test-token", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestSearchRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		page    int
		perPage int
		wantErr bool
	}{
		{"empty query", "", 1, 30, true},
		{"negative page", "go", -1, 30, true},
		{"perPage over ceiling", "go", 1, 101, true},
		{"perPage at ceiling", "go", 1, 100, false},
		{"defaults applied", "go", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewSearchRequest(tt.query, tt.page, tt.perPage)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("error type = %T, want *ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.page == 0 && req.Page() != 1 {
				t.Errorf("default page = %d, want 1", req.Page())
			}
			if tt.perPage == 0 && req.PerPage() != DefaultPerPage {
				t.Errorf("default perPage = %d, want %d", req.PerPage(), DefaultPerPage)
			}
		})
	}
}

func TestPullRequestRequestValidation(t *testing.T) {
	if _, err := NewPullRequestRequest("o", "r", "t", "main", "main", ""); err == nil {
		t.Fatal("expected error for head == base")
	}
	if _, err := NewPullRequestRequest("o", "r", "", "feature", "main", ""); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := NewPullRequestRequest("o", "r", "t", "feature", "main", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchRepositories(t *testing.T) {
	srv, _ := fixtureServer(t)
	c := newTestClient(t, srv.URL)

	req, err := NewSearchRequest("test", 1, 30)
	if err != nil {
		t.Fatalf("NewSearchRequest: %v", err)
	}
	res, err := c.SearchRepositories(context.Background(), req)
	if err != nil {
		t.Fatalf("SearchRepositories: %v", err)
	}
	if res.TotalCount != 1234 {
		t.Errorf("total_count = %d, want 1234", res.TotalCount)
	}
	if res.Page != 1 || res.PerPage != 30 {
		t.Errorf("pagination = page %d per_page %d, want 1/30", res.Page, res.PerPage)
	}
	if res.ItemCount > res.PerPage {
		t.Errorf("item count %d exceeds per_page %d", res.ItemCount, res.PerPage)
	}
}

func TestSearchRepositoriesBadCredentials(t *testing.T) {
	srv, _ := fixtureServer(t)
	c, err := New(Config{Token: "revoked", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req, _ := NewSearchRequest("test", 1, 30)
	_, err = c.SearchRepositories(context.Background(), req)
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("error type = %T, want *UpstreamError", err)
	}
	if uerr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", uerr.StatusCode)
	}
	if !strings.Contains(uerr.Message, "Bad credentials") {
		t.Errorf("message = %q, want upstream message passed through", uerr.Message)
	}
}

func TestGetContentsFile(t *testing.T) {
	srv, _ := fixtureServer(t)
	c := newTestClient(t, srv.URL)

	req, err := NewContentsRequest("octocat", "Hello-World", "README", "")
	if err != nil {
		t.Fatalf("NewContentsRequest: %v", err)
	}
	res, err := c.GetContents(context.Background(), req)
	if err != nil {
		t.Fatalf("GetContents: %v", err)
	}
	if res.IsDir() {
		t.Fatal("expected file variant, got directory")
	}
	if res.File.Encoding != "base64" {
		t.Errorf("encoding = %q, want base64 passed through", res.File.Encoding)
	}
	decoded, err := base64.StdEncoding.DecodeString(res.File.Content)
	if err != nil {
		t.Fatalf("content is not valid base64: %v", err)
	}
	if string(decoded) != readmeText {
		t.Errorf("decoded content = %q, want %q", decoded, readmeText)
	}
	// Round-trip: the facade must not have touched the encoding.
	if base64.StdEncoding.EncodeToString(decoded) != res.File.Content {
		t.Error("base64 content does not round-trip")
	}
}

func TestGetContentsDirectory(t *testing.T) {
	srv, _ := fixtureServer(t)
	c := newTestClient(t, srv.URL)

	req, _ := NewContentsRequest("octocat", "Hello-World", "docs", "")
	res, err := c.GetContents(context.Background(), req)
	if err != nil {
		t.Fatalf("GetContents: %v", err)
	}
	if !res.IsDir() {
		t.Fatal("expected directory variant, got file")
	}
	if len(res.Dir) != 2 {
		t.Errorf("entries = %d, want 2", len(res.Dir))
	}
	if res.Dir[1].Type != "dir" {
		t.Errorf("entry type = %q, want dir", res.Dir[1].Type)
	}
}

func TestGetContentsNotFound(t *testing.T) {
	srv, _ := fixtureServer(t)
	c := newTestClient(t, srv.URL)

	req, _ := NewContentsRequest("octocat", "Hello-World", "no/such/file.txt", "")
	_, err := c.GetContents(context.Background(), req)
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("error type = %T, want *UpstreamError", err)
	}
	if uerr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", uerr.StatusCode)
	}
}

func TestCreatePullRequestDuplicate(t *testing.T) {
	srv, _ := fixtureServer(t)
	c := newTestClient(t, srv.URL)

	req, err := NewPullRequestRequest("octocat", "Hello-World", "Add feature", "feature", "main", "body")
	if err != nil {
		t.Fatalf("NewPullRequestRequest: %v", err)
	}

	pr, err := c.CreatePullRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if pr.Number != 42 {
		t.Errorf("number = %d, want 42", pr.Number)
	}
	if pr.HTMLURL == "" {
		t.Error("expected html_url on created pull request")
	}

	// Identical second call: the client does not de-duplicate, the
	// upstream conflict comes back as-is.
	_, err = c.CreatePullRequest(context.Background(), req)
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("error type = %T, want *UpstreamError", err)
	}
	if uerr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", uerr.StatusCode)
	}
}

func TestTransportError(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := newTestClient(t, srv.URL)

	req, _ := NewSearchRequest("test", 1, 30)
	_, err := c.SearchRepositories(context.Background(), req)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *TransportError", err)
	}
}
