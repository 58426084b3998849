// Package github wraps the GitHub REST API operations the release
// runner performs: releases, repository contents, git objects, and
// pull requests.
package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API client, bound to a single repository.
type Client struct {
	client *github.Client
	owner  string
	repo   string
}

// NewClient creates a new GitHub client with token authentication
func NewClient(ctx context.Context, token, owner, repo string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}
}

// NewEnterpriseClient creates a client for a GitHub Enterprise instance.
// uploadURL may be empty to reuse apiURL for asset uploads.
func NewEnterpriseClient(ctx context.Context, token, apiURL, uploadURL, owner, repo string) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	if uploadURL == "" {
		uploadURL = apiURL
	}

	gh, err := github.NewClient(tc).WithEnterpriseURLs(apiURL, uploadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure enterprise client: %w", err)
	}

	return &Client{
		client: gh,
		owner:  owner,
		repo:   repo,
	}, nil
}

// WithRepository returns a copy of the client bound to a different
// repository, sharing the underlying HTTP client.
func (c *Client) WithRepository(owner, repo string) *Client {
	clone := *c
	clone.owner = owner
	clone.repo = repo
	return &clone
}

// Owner returns the repository owner the client is bound to.
func (c *Client) Owner() string {
	return c.owner
}

// Repo returns the repository name the client is bound to.
func (c *Client) Repo() string {
	return c.repo
}

// paginatedList drains a paginated GitHub list endpoint.
func paginatedList[T any](fetch func(page int) ([]T, *github.Response, error)) ([]T, error) {
	var all []T
	page := 0

	for {
		items, resp, err := fetch(page)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return all, nil
}
