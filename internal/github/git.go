package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v57/github"
)

// DefaultBranch returns the repository's default branch name.
func (c *Client) DefaultBranch(ctx context.Context) (string, error) {
	slog.Debug("GitHub API: Getting repository", "owner", c.owner, "repo", c.repo)
	repo, _, err := c.client.Repositories.Get(ctx, c.owner, c.repo)
	if err != nil {
		return "", apiError("get repository", err)
	}
	return repo.GetDefaultBranch(), nil
}

// BranchHead returns the commit SHA at the tip of the branch.
func (c *Client) BranchHead(ctx context.Context, branch string) (string, error) {
	slog.Debug("GitHub API: Getting ref", "owner", c.owner, "repo", c.repo, "branch", branch)
	ref, _, err := c.client.Git.GetRef(ctx, c.owner, c.repo, "heads/"+branch)
	if err != nil {
		return "", apiError(fmt.Sprintf("get branch %s", branch), err)
	}
	return ref.GetObject().GetSHA(), nil
}

// EnsureBranch creates branch at sha unless it already exists. An
// existing branch is left where it is so reruns pick up earlier work.
func (c *Client) EnsureBranch(ctx context.Context, branch, sha string) error {
	_, err := c.BranchHead(ctx, branch)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	ref := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	}

	slog.Debug("GitHub API: Creating ref", "owner", c.owner, "repo", c.repo, "branch", branch, "sha", sha)
	if _, _, err := c.client.Git.CreateRef(ctx, c.owner, c.repo, ref); err != nil {
		return apiError(fmt.Sprintf("create branch %s", branch), err)
	}

	return nil
}

// ResolveTag resolves a tag name to the commit SHA it points at,
// peeling annotated tags.
func (c *Client) ResolveTag(ctx context.Context, tag string) (string, error) {
	slog.Debug("GitHub API: Getting ref", "owner", c.owner, "repo", c.repo, "tag", tag)
	ref, _, err := c.client.Git.GetRef(ctx, c.owner, c.repo, "tags/"+tag)
	if err != nil {
		return "", apiError(fmt.Sprintf("resolve tag %s", tag), err)
	}

	obj := ref.GetObject()
	for obj.GetType() == "tag" {
		slog.Debug("GitHub API: Peeling annotated tag", "owner", c.owner, "repo", c.repo, "sha", obj.GetSHA())
		annotated, _, err := c.client.Git.GetTag(ctx, c.owner, c.repo, obj.GetSHA())
		if err != nil {
			return "", apiError(fmt.Sprintf("resolve tag %s", tag), err)
		}
		obj = annotated.GetObject()
	}

	return obj.GetSHA(), nil
}

// SubmodulePin returns the commit SHA the submodule at path is pinned
// to on the given ref.
func (c *Client) SubmodulePin(ctx context.Context, path, ref string) (string, error) {
	file, err := c.GetFile(ctx, path, ref)
	if err != nil {
		return "", err
	}
	if file.Type != "submodule" {
		return "", fmt.Errorf("failed to read submodule pin: %s is a %s, not a submodule", path, file.Type)
	}
	return file.SHA, nil
}

// UpdateSubmodulePin commits a new submodule pin on the branch and
// advances the branch to the new commit. The ref update is not forced,
// so a branch that moved since its head was read fails with
// ErrUpdateConflict.
func (c *Client) UpdateSubmodulePin(ctx context.Context, update SubmodulePinUpdate) (string, error) {
	head, err := c.BranchHead(ctx, update.Branch)
	if err != nil {
		return "", err
	}

	slog.Debug("GitHub API: Getting commit", "owner", c.owner, "repo", c.repo, "sha", head)
	parent, _, err := c.client.Git.GetCommit(ctx, c.owner, c.repo, head)
	if err != nil {
		return "", apiError(fmt.Sprintf("get commit %s", head), err)
	}

	// Mode 160000 is a gitlink entry; the contents API cannot write
	// these, so the pin goes through the git data API.
	entries := []*github.TreeEntry{
		{
			Path: github.String(update.Path),
			Mode: github.String("160000"),
			Type: github.String("commit"),
			SHA:  github.String(update.SHA),
		},
	}

	slog.Debug("GitHub API: Creating tree", "owner", c.owner, "repo", c.repo, "base_tree", parent.GetTree().GetSHA(), "path", update.Path, "sha", update.SHA)
	tree, _, err := c.client.Git.CreateTree(ctx, c.owner, c.repo, parent.GetTree().GetSHA(), entries)
	if err != nil {
		return "", apiError("create tree", err)
	}

	commit := &github.Commit{
		Message: github.String(update.Message),
		Tree:    tree,
		Parents: []*github.Commit{{SHA: github.String(head)}},
	}

	slog.Debug("GitHub API: Creating commit", "owner", c.owner, "repo", c.repo, "tree", tree.GetSHA(), "parent", head)
	created, _, err := c.client.Git.CreateCommit(ctx, c.owner, c.repo, commit, nil)
	if err != nil {
		return "", apiError("create commit", err)
	}

	ref := &github.Reference{
		Ref:    github.String("refs/heads/" + update.Branch),
		Object: &github.GitObject{SHA: github.String(created.GetSHA())},
	}

	slog.Debug("GitHub API: Updating ref", "owner", c.owner, "repo", c.repo, "branch", update.Branch, "sha", created.GetSHA())
	if _, _, err := c.client.Git.UpdateRef(ctx, c.owner, c.repo, ref, false); err != nil {
		// A non fast-forward update comes back as 422, not 409.
		if statusCode(err) == http.StatusUnprocessableEntity {
			return "", fmt.Errorf("failed to advance branch %s: %w: %w", update.Branch, ErrUpdateConflict, err)
		}
		return "", apiError(fmt.Sprintf("advance branch %s", update.Branch), err)
	}

	return created.GetSHA(), nil
}
