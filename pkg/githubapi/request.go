package githubapi

// Typed request values, one per operation. A request cannot be built
// without its required fields: the constructors return ValidationError
// before any network traffic, and the fields are unexported so callers
// cannot bypass the checks.

const (
	// DefaultPerPage is the search page size when the caller does not set one.
	DefaultPerPage = 30
	// MaxPerPage is the upstream-imposed ceiling on search page size.
	MaxPerPage = 100
)

// SearchRequest describes one repository search.
type SearchRequest struct {
	query   string
	page    int
	perPage int
}

// NewSearchRequest validates and builds a SearchRequest.
// page defaults to 1 and perPage to DefaultPerPage when zero.
func NewSearchRequest(query string, page, perPage int) (SearchRequest, error) {
	if query == "" {
		return SearchRequest{}, &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return SearchRequest{}, &ValidationError{Field: "page", Reason: "must be >= 1"}
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if perPage < 1 || perPage > MaxPerPage {
		return SearchRequest{}, &ValidationError{Field: "perPage", Reason: "must be between 1 and 100"}
	}
	return SearchRequest{query: query, page: page, perPage: perPage}, nil
}

// Query returns the search query string.
func (r SearchRequest) Query() string { return r.query }

// Page returns the requested page number.
func (r SearchRequest) Page() int { return r.page }

// PerPage returns the requested page size.
func (r SearchRequest) PerPage() int { return r.perPage }

// ContentsRequest describes one file or directory lookup.
type ContentsRequest struct {
	owner string
	repo  string
	path  string
	ref   string
}

// NewContentsRequest validates and builds a ContentsRequest.
// ref may be empty; the repository's default branch is resolved upstream.
func NewContentsRequest(owner, repo, path, ref string) (ContentsRequest, error) {
	switch {
	case owner == "":
		return ContentsRequest{}, &ValidationError{Field: "owner", Reason: "must not be empty"}
	case repo == "":
		return ContentsRequest{}, &ValidationError{Field: "repo", Reason: "must not be empty"}
	case path == "":
		return ContentsRequest{}, &ValidationError{Field: "path", Reason: "must not be empty"}
	}
	return ContentsRequest{owner: owner, repo: repo, path: path, ref: ref}, nil
}

// PullRequestRequest describes one pull request creation.
type PullRequestRequest struct {
	owner string
	repo  string
	title string
	head  string
	base  string
	body  string
}

// NewPullRequestRequest validates and builds a PullRequestRequest.
// body may be empty. head and base must differ; whether the branches
// exist is verified upstream, not here.
func NewPullRequestRequest(owner, repo, title, head, base, body string) (PullRequestRequest, error) {
	switch {
	case owner == "":
		return PullRequestRequest{}, &ValidationError{Field: "owner", Reason: "must not be empty"}
	case repo == "":
		return PullRequestRequest{}, &ValidationError{Field: "repo", Reason: "must not be empty"}
	case title == "":
		return PullRequestRequest{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	case head == "":
		return PullRequestRequest{}, &ValidationError{Field: "head", Reason: "must not be empty"}
	case base == "":
		return PullRequestRequest{}, &ValidationError{Field: "base", Reason: "must not be empty"}
	case head == base:
		return PullRequestRequest{}, &ValidationError{Field: "head", Reason: "must name a branch distinct from base"}
	}
	return PullRequestRequest{owner: owner, repo: repo, title: title, head: head, base: base, body: body}, nil
}
