package updatesubmodule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alan/release-runner/internal/github"
	"gopkg.in/ini.v1"
)

const gitmodulesPath = ".gitmodules"

// ensureRegistered makes sure .gitmodules declares the submodule at
// path, appending and committing an entry on branch when it does not.
// The pin commit that follows needs the registration in place or git
// clients will not recognize the gitlink.
func (sc *UpdateSubmoduleCommand) ensureRegistered(ctx context.Context, parent *github.Client, branch, path string) error {
	var content []byte
	var sha string

	file, err := parent.GetFile(ctx, gitmodulesPath, branch)
	switch {
	case errors.Is(err, github.ErrNotFound):
		// No .gitmodules yet; the commit below creates it.
	case err != nil:
		return err
	default:
		content = []byte(file.Content)
		sha = file.SHA

		registered, err := submoduleRegistered(content, path)
		if err != nil {
			return err
		}
		if registered {
			return nil
		}
	}

	url := fmt.Sprintf("https://github.com/%s/%s.git", sc.Client.Owner(), sc.Client.Repo())
	updated := appendSubmoduleEntry(content, path, url)

	message := fmt.Sprintf("chore: register %s submodule", sc.Repo)
	commitSHA, err := parent.UpdateFile(ctx, gitmodulesPath, branch, message, updated, sha)
	if err != nil {
		return err
	}

	slog.Info("Registered submodule", "path", path, "branch", branch, "commit", commitSHA)
	return nil
}

// submoduleRegistered reports whether the .gitmodules content already
// declares a submodule at path.
func submoduleRegistered(content []byte, path string) (bool, error) {
	modules, err := ini.Load(content)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", gitmodulesPath, err)
	}

	for _, section := range modules.Sections() {
		if section.Key("path").String() == path {
			return true, nil
		}
	}

	return false, nil
}

// appendSubmoduleEntry adds an entry in git's own format. Appending
// keeps the formatting of existing entries intact, which rewriting
// through an ini serializer would not.
func appendSubmoduleEntry(content []byte, path, url string) []byte {
	if len(content) > 0 && content[len(content)-1] != '\n' {
		content = append(content, '\n')
	}
	entry := fmt.Sprintf("[submodule %q]\n\tpath = %s\n\turl = %s\n", path, path, url)
	return append(content, entry...)
}
