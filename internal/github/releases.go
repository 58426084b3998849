package github

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-github/v57/github"
)

// ListReleases returns all releases of the repository, newest first.
// Drafts and prereleases are included; callers filter as needed.
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	releases, err := paginatedList(func(page int) ([]*github.RepositoryRelease, *github.Response, error) {
		opts := &github.ListOptions{
			PerPage: 100,
			Page:    page,
		}
		slog.Debug("GitHub API: Listing releases", "owner", c.owner, "repo", c.repo, "page", page)
		return c.client.Repositories.ListReleases(ctx, c.owner, c.repo, opts)
	})
	if err != nil {
		return nil, apiError("list releases", err)
	}

	var all []Release
	for _, rel := range releases {
		all = append(all, convertRelease(rel))
	}

	sortReleases(all)
	return all, nil
}

// LatestRelease returns the newest published release, skipping drafts
// and prereleases. Returns ErrNoReleases when none exist.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	releases, err := c.ListReleases(ctx)
	if err != nil {
		return nil, err
	}

	for i := range releases {
		if releases[i].Draft || releases[i].Prerelease {
			continue
		}
		return &releases[i], nil
	}

	return nil, ErrNoReleases
}

// sortReleases orders releases newest first by creation time. Releases
// created in the same instant (bulk imports, mirrored repositories)
// are tie-broken by comparing their tags as semantic versions.
func sortReleases(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		if !releases[i].CreatedAt.Equal(releases[j].CreatedAt) {
			return releases[i].CreatedAt.After(releases[j].CreatedAt)
		}
		return compareTags(releases[i].TagName, releases[j].TagName) > 0
	})
}

// compareTags compares two release tags as semantic versions
// Returns > 0 if a > b, < 0 if a < b, 0 if equal
// Tags that do not parse sort below tags that do; two unparseable tags
// compare lexically so the order stays total.
func compareTags(a, b string) int {
	va, errA := semver.NewVersion(strings.TrimPrefix(a, "v"))
	vb, errB := semver.NewVersion(strings.TrimPrefix(b, "v"))

	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// CreateRelease publishes a release pointing at the given tag. The tag
// is created from TargetCommitish (or the default branch) when it does
// not already exist.
func (c *Client) CreateRelease(ctx context.Context, req ReleaseRequest) (*Release, error) {
	release := &github.RepositoryRelease{
		TagName:    github.String(req.TagName),
		Name:       github.String(req.Name),
		Body:       github.String(req.Body),
		Draft:      github.Bool(req.Draft),
		Prerelease: github.Bool(req.Prerelease),
	}
	if req.TargetCommitish != "" {
		release.TargetCommitish = github.String(req.TargetCommitish)
	}

	slog.Debug("GitHub API: Creating release", "owner", c.owner, "repo", c.repo, "tag", req.TagName, "draft", req.Draft)
	created, _, err := c.client.Repositories.CreateRelease(ctx, c.owner, c.repo, release)
	if err != nil {
		return nil, apiError(fmt.Sprintf("create release %s", req.TagName), err)
	}

	rel := convertRelease(created)
	return &rel, nil
}

// UploadReleaseAsset attaches the file at path to the release.
func (c *Client) UploadReleaseAsset(ctx context.Context, releaseID int64, path string) error {
	file, err := os.Open(path) //nolint:gosec // Asset path is from command-line flag or config
	if err != nil {
		return fmt.Errorf("failed to open release asset: %w", err)
	}
	defer file.Close()

	opts := &github.UploadOptions{
		Name:      filepath.Base(path),
		MediaType: assetMediaType(path),
	}

	slog.Debug("GitHub API: Uploading release asset", "owner", c.owner, "repo", c.repo, "release_id", releaseID, "name", opts.Name, "media_type", opts.MediaType)
	if _, _, err := c.client.Repositories.UploadReleaseAsset(ctx, c.owner, c.repo, releaseID, opts, file); err != nil {
		return apiError(fmt.Sprintf("upload release asset %s", opts.Name), err)
	}

	return nil
}

// assetMediaType guesses the content type for an asset upload. Tarballs
// are the common case and always get application/gzip; platform MIME
// tables disagree about .gz.
func assetMediaType(path string) string {
	ext := filepath.Ext(path)
	switch ext {
	case ".gz", ".tgz":
		return "application/gzip"
	}

	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// convertRelease converts a go-github release to our Release type.
func convertRelease(rel *github.RepositoryRelease) Release {
	return Release{
		ID:         rel.GetID(),
		TagName:    rel.GetTagName(),
		Name:       rel.GetName(),
		Draft:      rel.GetDraft(),
		Prerelease: rel.GetPrerelease(),
		CreatedAt:  rel.GetCreatedAt().Time,
	}
}
