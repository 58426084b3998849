package github

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/google/go-github/v57/github"
)

// CreateOrUpdatePullRequest opens a pull request from head into base,
// or refreshes the title and body of the open one that already exists
// for head. Reruns of the same update therefore converge on a single
// PR instead of piling up duplicates.
func (c *Client) CreateOrUpdatePullRequest(ctx context.Context, title, body, head, base string) (*PullRequest, error) {
	existing, err := c.openPullRequestForBranch(ctx, head, base)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		update := &github.PullRequest{
			Title: github.String(title),
			Body:  github.String(body),
		}
		slog.Debug("GitHub API: Updating PR", "owner", c.owner, "repo", c.repo, "pr", existing.GetNumber())
		pr, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, existing.GetNumber(), update)
		if err != nil {
			return nil, apiError(fmt.Sprintf("update PR #%d", existing.GetNumber()), err)
		}
		return convertPullRequest(pr), nil
	}

	newPR := &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(head),
		Base:  github.String(base),
	}

	slog.Debug("GitHub API: Creating PR", "owner", c.owner, "repo", c.repo, "head", head, "base", base)
	pr, _, err := c.client.PullRequests.Create(ctx, c.owner, c.repo, newPR)
	if err != nil {
		return nil, apiError(fmt.Sprintf("create PR for %s", head), err)
	}

	return convertPullRequest(pr), nil
}

// openPullRequestForBranch finds the open PR from head into base, nil
// when none exists.
func (c *Client) openPullRequestForBranch(ctx context.Context, head, base string) (*github.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State: "open",
		Head:  c.owner + ":" + head,
		Base:  base,
		ListOptions: github.ListOptions{
			PerPage: 1,
		},
	}

	slog.Debug("GitHub API: Listing pull requests", "owner", c.owner, "repo", c.repo, "head", head, "base", base)
	prs, _, err := c.client.PullRequests.List(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, apiError(fmt.Sprintf("list PRs for %s", head), err)
	}

	if len(prs) == 0 {
		return nil, nil
	}
	return prs[0], nil
}

// AddLabels adds labels to the pull request. PRs share the issue
// numbering, so this goes through the issues API.
func (c *Client) AddLabels(ctx context.Context, number int, labels []string) error {
	slog.Debug("GitHub API: Adding labels", "owner", c.owner, "repo", c.repo, "pr", number, "labels", labels)
	if _, _, err := c.client.Issues.AddLabelsToIssue(ctx, c.owner, c.repo, number, labels); err != nil {
		return apiError(fmt.Sprintf("add labels to PR #%d", number), err)
	}
	return nil
}

// PullRequestLabels returns the labels on the pull request in the
// order GitHub reports them.
func (c *Client) PullRequestLabels(ctx context.Context, number int) ([]string, error) {
	labels, err := paginatedList(func(page int) ([]*github.Label, *github.Response, error) {
		opts := &github.ListOptions{
			PerPage: 100,
			Page:    page,
		}
		slog.Debug("GitHub API: Listing PR labels", "owner", c.owner, "repo", c.repo, "pr", number, "page", page)
		return c.client.Issues.ListLabelsByIssue(ctx, c.owner, c.repo, number, opts)
	})
	if err != nil {
		return nil, apiError(fmt.Sprintf("list labels on PR #%d", number), err)
	}

	var names []string
	for _, label := range labels {
		names = append(names, label.GetName())
	}
	return names, nil
}

// mergeMessagePatterns match the PR number embedded in merge and
// squash commit messages.
var mergeMessagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Merge pull request #(\d+)`),
	regexp.MustCompile(`Pull request #(\d+)`),
	regexp.MustCompile(`#(\d+) from`),
	regexp.MustCompile(`PR-(\d+)`),
}

// PullRequestForCommit returns the number of the pull request the
// commit was merged through, or 0 when none can be determined. The
// commit association endpoint is tried first; commits it does not know
// about fall back to parsing the commit message.
func (c *Client) PullRequestForCommit(ctx context.Context, sha string) (int, error) {
	slog.Debug("GitHub API: Listing PRs for commit", "owner", c.owner, "repo", c.repo, "sha", sha)
	prs, _, err := c.client.PullRequests.ListPullRequestsWithCommit(ctx, c.owner, c.repo, sha, nil)
	if err != nil {
		return 0, apiError(fmt.Sprintf("list PRs for commit %s", sha), err)
	}
	if len(prs) > 0 {
		return prs[0].GetNumber(), nil
	}

	slog.Debug("GitHub API: Getting commit", "owner", c.owner, "repo", c.repo, "sha", sha)
	commit, _, err := c.client.Repositories.GetCommit(ctx, c.owner, c.repo, sha, nil)
	if err != nil {
		return 0, apiError(fmt.Sprintf("get commit %s", sha), err)
	}

	return prNumberFromCommitMessage(commit.GetCommit().GetMessage()), nil
}

// prNumberFromCommitMessage extracts a PR number from a merge-style
// commit message, 0 when no pattern matches.
func prNumberFromCommitMessage(message string) int {
	for _, pattern := range mergeMessagePatterns {
		match := pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return number
	}
	return 0
}

// convertPullRequest converts a go-github pull request to our type.
func convertPullRequest(pr *github.PullRequest) *PullRequest {
	out := &PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		State:  pr.GetState(),
	}
	for _, label := range pr.Labels {
		out.Labels = append(out.Labels, label.GetName())
	}
	return out
}
