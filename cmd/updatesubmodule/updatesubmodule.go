package updatesubmodule

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/alan/release-runner/cmd"
	"github.com/alan/release-runner/internal/commands"
	"github.com/alan/release-runner/internal/github"
	"github.com/alan/release-runner/internal/handoff"
	"github.com/alan/release-runner/internal/version"
	"github.com/spf13/cobra"
)

// UpdateSubmoduleCommand encapsulates the update-submodule command with common functionality
type UpdateSubmoduleCommand struct {
	commands.BaseCommand
	ParentRepo     string
	SubmodulePath  string
	CurrentVersion string
	IsMerge        bool
}

// NewUpdateSubmoduleCmd creates and returns the update-submodule command
func NewUpdateSubmoduleCmd(globalConfigFile *string, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) *cobra.Command {
	updateSubmoduleCmd := &UpdateSubmoduleCommand{}

	command := &cobra.Command{
		Use:   "update-submodule",
		Short: "Move the submodule pin in a parent repository to the released commit",
		Long: `Update the parent repository so its submodule for this repository
points at the commit of the just-released tag.

The version comes from new_version.txt when present (written by
bump-version), otherwise from --current-version. With --is-merge the pin
is committed directly to the parent's default branch; otherwise the
change lands on an update branch and a pull request is opened or
refreshed. A submodule the parent does not know yet is registered in
.gitmodules first.

Requires GITHUB_TOKEN environment variable to be set.`,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			// Initialize base command
			updateSubmoduleCmd.ConfigFile = globalConfigFile
			updateSubmoduleCmd.LoadConfig = loadConfig
			updateSubmoduleCmd.SaveConfig = saveConfig
			if err := updateSubmoduleCmd.Init(cobraCmd.Context()); err != nil {
				return err
			}

			return updateSubmoduleCmd.Run(cobraCmd.Context())
		},
	}

	updateSubmoduleCmd.AddRepositoryFlags(command)
	command.Flags().StringVar(&updateSubmoduleCmd.ParentRepo, "parent-repo", "", "Parent repository containing the submodule (owner/name, or name under the same owner)")
	command.Flags().StringVarP(&updateSubmoduleCmd.SubmodulePath, "submodule-path", "m", "", "Path of the submodule inside the parent repository")
	command.Flags().StringVarP(&updateSubmoduleCmd.CurrentVersion, "current-version", "c", "", "Released version to pin (defaults to new_version.txt)")
	command.Flags().BoolVarP(&updateSubmoduleCmd.IsMerge, "is-merge", "i", false, "Commit directly to the parent's default branch instead of opening a PR")

	return command
}

// Run executes the update-submodule command
func (sc *UpdateSubmoduleCommand) Run(ctx context.Context) error {
	next, err := sc.releaseVersion()
	if err != nil {
		return err
	}

	parentRepo, submodulePath, err := sc.target()
	if err != nil {
		return err
	}

	newPin, err := sc.Client.ResolveTag(ctx, next.String())
	if err != nil {
		return err
	}
	slog.Debug("Resolved released tag", "tag", next, "sha", newPin)

	parent := sc.parentClient(parentRepo)

	base, err := parent.DefaultBranch(ctx)
	if err != nil {
		return err
	}

	baseHead, err := parent.BranchHead(ctx, base)
	if err != nil {
		return err
	}

	currentPin, err := parent.SubmodulePin(ctx, submodulePath, base)
	if err != nil && !errors.Is(err, github.ErrNotFound) {
		return err
	}

	if currentPin == newPin {
		fmt.Printf("Submodule %s already points at %s, nothing to update\n", submodulePath, next)
		return nil
	}

	workBranch := base
	if !sc.IsMerge {
		workBranch = fmt.Sprintf("update-%s-%s", sc.Repo, next)
		if err := parent.EnsureBranch(ctx, workBranch, baseHead); err != nil {
			return err
		}
	}

	if currentPin == "" {
		if err := sc.ensureRegistered(ctx, parent, workBranch, submodulePath); err != nil {
			return err
		}
	}

	commitSHA, err := parent.UpdateSubmodulePin(ctx, github.SubmodulePinUpdate{
		Branch:  workBranch,
		Path:    submodulePath,
		SHA:     newPin,
		Message: fmt.Sprintf("chore: update %s submodule to %s", sc.Repo, next),
	})
	if err != nil {
		return err
	}
	slog.Info("Updated submodule pin", "path", submodulePath, "branch", workBranch, "old", displayPin(currentPin), "new", newPin, "commit", commitSHA)

	if sc.IsMerge {
		fmt.Printf("✅ Updated %s submodule to %s on %s (commit %s)\n", sc.Repo, next, base, commitSHA)
		return nil
	}

	pr, err := sc.openPullRequest(ctx, parent, workBranch, base, next, currentPin, newPin)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Created PR #%d for submodule update\n", pr.Number)
	return nil
}

// releaseVersion prefers the hand-off file written by bump-version and
// falls back to the flag.
func (sc *UpdateSubmoduleCommand) releaseVersion() (version.Version, error) {
	raw, err := handoff.Read(handoff.NewVersionFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return version.Version{}, err
		}
		raw = sc.CurrentVersion
	}
	if raw == "" {
		return version.Version{}, fmt.Errorf("release version is required (run bump-version first or pass --current-version)")
	}

	next, err := version.Parse(raw)
	if err != nil {
		return version.Version{}, fmt.Errorf("version %q is not a release version: %w", raw, err)
	}

	return next, nil
}

// target resolves the parent repository and submodule path, each from
// its flag first and the config file second.
func (sc *UpdateSubmoduleCommand) target() (string, string, error) {
	parentRepo := sc.ParentRepo
	if parentRepo == "" {
		parentRepo = sc.Config.ParentRepo
	}
	if parentRepo == "" {
		return "", "", fmt.Errorf("parent repository is required (use --parent-repo or the config file)")
	}

	submodulePath := sc.SubmodulePath
	if submodulePath == "" {
		submodulePath = sc.Config.SubmodulePath
	}
	if submodulePath == "" {
		return "", "", fmt.Errorf("submodule path is required (use --submodule-path or the config file)")
	}

	return parentRepo, submodulePath, nil
}

// parentClient binds a client view to the parent repository. A bare
// repository name stays under the same owner.
func (sc *UpdateSubmoduleCommand) parentClient(parentRepo string) *github.Client {
	owner, name, found := strings.Cut(parentRepo, "/")
	if !found {
		return sc.Client.WithRepository(sc.Owner, parentRepo)
	}
	return sc.Client.WithRepository(owner, name)
}

// openPullRequest opens or refreshes the update PR and applies the
// configured patch label.
func (sc *UpdateSubmoduleCommand) openPullRequest(ctx context.Context, parent *github.Client, head, base string, next version.Version, oldPin, newPin string) (*github.PullRequest, error) {
	title := fmt.Sprintf("Update %s submodule to %s", sc.Repo, next)
	body := fmt.Sprintf("This PR updates the %s submodule from commit `%s` to `%s`\n\nVersion: %s", sc.Repo, displayPin(oldPin), newPin, next)

	pr, err := parent.CreateOrUpdatePullRequest(ctx, title, body, head, base)
	if err != nil {
		return nil, err
	}

	if label, ok := sc.Config.LabelForPolicy(string(version.PolicyPatch)); ok {
		if err := parent.AddLabels(ctx, pr.Number, []string{label}); err != nil {
			slog.Warn("Failed to label submodule update PR", "pr", pr.Number, "label", label, "error", err)
		}
	}

	return pr, nil
}

// displayPin renders the empty pin of a brand-new submodule.
func displayPin(pin string) string {
	if pin == "" {
		return "initial"
	}
	return pin
}
