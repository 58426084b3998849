package github

import "time"

// Release represents a release of the repository.
type Release struct {
	ID         int64
	TagName    string
	Name       string
	Draft      bool
	Prerelease bool
	CreatedAt  time.Time
}

// ReleaseRequest carries the fields for publishing a new release.
type ReleaseRequest struct {
	TagName         string
	TargetCommitish string
	Name            string
	Body            string
	Draft           bool
	Prerelease      bool
}

// FileContent represents a single entry fetched through the contents
// API. For submodule entries Content is empty and SHA is the pinned
// commit.
type FileContent struct {
	Path    string
	Content string
	SHA     string
	Type    string // "file", "submodule", or "symlink"
}

// PullRequest represents a pull request from GitHub.
type PullRequest struct {
	Number int
	Title  string
	URL    string
	State  string
	Labels []string
}

// SubmodulePinUpdate describes a submodule pin commit to create.
type SubmodulePinUpdate struct {
	Branch  string
	Path    string
	SHA     string
	Message string
}
