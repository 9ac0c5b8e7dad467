package githubapi

import "github.com/go-faster/jx"

// Response types model only the fields the tools need. The full
// upstream payload is preserved in Raw and passed through verbatim;
// GitHub API objects carry hundreds of fields that are irrelevant here.
// JSON field names match the GitHub REST API documentation.

// SearchResult is the response to a repository search, with the
// requested pagination echoed back alongside the upstream metadata.
type SearchResult struct {
	TotalCount        int    `json:"total_count"`
	IncompleteResults bool   `json:"incomplete_results"`
	Page              int    `json:"page"`
	PerPage           int    `json:"per_page"`
	Items             jx.Raw `json:"items"`

	// ItemCount is the number of entries in Items.
	ItemCount int `json:"-"`
	// Raw is the unmodified upstream response body.
	Raw jx.Raw `json:"-"`
}

// FileContent is a single file entry from the contents endpoint.
// Content is base64-encoded exactly as upstream returned it; decoding
// is left to the caller.
type FileContent struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	Encoding    string `json:"encoding"`
	Content     string `json:"content"`
	HTMLURL     string `json:"html_url"`
	DownloadURL string `json:"download_url"`
}

// DirEntry is one entry in a directory listing.
type DirEntry struct {
	Type    string `json:"type"` // "file", "dir", "symlink", "submodule"
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int64  `json:"size"`
	HTMLURL string `json:"html_url"`
}

// Contents is the tagged result of a contents lookup. Upstream returns
// an object for a file and an array for a directory; exactly one of
// File and Dir is set.
type Contents struct {
	File *FileContent
	Dir  []DirEntry

	// Raw is the unmodified upstream response body.
	Raw jx.Raw
}

// IsDir reports whether the lookup resolved to a directory listing.
func (c *Contents) IsDir() bool { return c.File == nil }

// PullRequest is the created pull request's identity.
type PullRequest struct {
	Number  int    `json:"number"`
	State   string `json:"state"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`

	// Raw is the unmodified upstream response body.
	Raw jx.Raw `json:"-"`
}

// apiError is the JSON body GitHub sends with non-2xx responses.
type apiError struct {
	Message string `json:"message"`
	DocURL  string `json:"documentation_url"`
}
