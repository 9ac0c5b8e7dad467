// Command ghcheck verifies GitHub API connectivity with the configured
// credential. It runs one repository search and one README fetch, then
// exits non-zero on any failure. Useful as a deploy smoke check.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ghbridge/server/internal/config"
	"ghbridge/server/pkg/githubapi"
)

func main() {
	log.SetFlags(0)

	owner := flag.String("owner", "golang", "repository owner for the README fetch")
	repo := flag.String("repo", "go", "repository name for the README fetch")
	query := flag.String("query", "language:go stars:>1000", "search query")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	client, err := githubapi.New(githubapi.Config{
		Token:   cfg.GitHubToken,
		BaseURL: cfg.GitHubBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to create GitHub client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := checkSearch(ctx, client, *query); err != nil {
		log.Fatalf("Search check failed: %v", err)
	}
	if err := checkReadme(ctx, client, *owner, *repo); err != nil {
		log.Fatalf("README check failed: %v", err)
	}

	fmt.Println("OK")
	os.Exit(0)
}

func checkSearch(ctx context.Context, client *githubapi.Client, query string) error {
	req, err := githubapi.NewSearchRequest(query, 1, 3)
	if err != nil {
		return err
	}
	res, err := client.SearchRepositories(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("search: %d repositories match %q (%d on page 1)\n", res.TotalCount, query, res.ItemCount)
	return nil
}

func checkReadme(ctx context.Context, client *githubapi.Client, owner, repo string) error {
	req, err := githubapi.NewContentsRequest(owner, repo, "README.md", "")
	if err != nil {
		return err
	}
	res, err := client.GetContents(ctx, req)
	if err != nil {
		return err
	}
	if res.IsDir() {
		return fmt.Errorf("README.md resolved to a directory in %s/%s", owner, repo)
	}

	// The contents API wraps base64 lines with newlines
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(res.File.Content, "\n", ""))
	if err != nil {
		return fmt.Errorf("decode README content: %w", err)
	}

	preview := string(decoded)
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	fmt.Printf("readme: %s/%s README.md (%d bytes)\n%s\n", owner, repo, res.File.Size, preview)
	return nil
}
