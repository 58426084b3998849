package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v57/github"
)

// GetFile fetches a single entry from the repository tree at the given
// ref. ref may be a branch, tag, or commit SHA; empty means the default
// branch.
func (c *Client) GetFile(ctx context.Context, path, ref string) (*FileContent, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}

	slog.Debug("GitHub API: Getting contents", "owner", c.owner, "repo", c.repo, "path", path, "ref", ref)
	file, _, _, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path, opts)
	if err != nil {
		return nil, apiError(fmt.Sprintf("get contents of %s", path), err)
	}
	if file == nil {
		return nil, fmt.Errorf("failed to get contents of %s: path is a directory", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode contents of %s: %w", path, err)
	}

	return &FileContent{
		Path:    file.GetPath(),
		Content: content,
		SHA:     file.GetSHA(),
		Type:    file.GetType(),
	}, nil
}

// UpdateFile creates or updates a file on the given branch and returns
// the SHA of the resulting commit. sha must be the current blob SHA
// when updating an existing file and empty when creating a new one;
// the API rejects stale SHAs with ErrUpdateConflict.
func (c *Client) UpdateFile(ctx context.Context, path, branch, message string, content []byte, sha string) (string, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(branch),
	}

	var (
		resp *github.RepositoryContentResponse
		err  error
	)
	if sha == "" {
		slog.Debug("GitHub API: Creating file", "owner", c.owner, "repo", c.repo, "path", path, "branch", branch)
		resp, _, err = c.client.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts)
	} else {
		opts.SHA = github.String(sha)
		slog.Debug("GitHub API: Updating file", "owner", c.owner, "repo", c.repo, "path", path, "branch", branch)
		resp, _, err = c.client.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts)
	}
	if err != nil {
		return "", apiError(fmt.Sprintf("update %s", path), err)
	}

	return resp.Commit.GetSHA(), nil
}
