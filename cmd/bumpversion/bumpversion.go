package bumpversion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/alan/release-runner/cmd"
	"github.com/alan/release-runner/internal/commands"
	"github.com/alan/release-runner/internal/handoff"
	"github.com/alan/release-runner/internal/version"
	"github.com/spf13/cobra"
)

// BumpVersionCommand encapsulates the bump-version command with common functionality
type BumpVersionCommand struct {
	commands.BaseCommand
	CurrentVersion string
	VersionType    string
	PRNumber       int
	CommitSHA      string
	IsMerge        bool
}

// NewBumpVersionCmd creates and returns the bump-version command
func NewBumpVersionCmd(globalConfigFile *string, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) *cobra.Command {
	bumpVersionCmd := &BumpVersionCommand{}

	command := &cobra.Command{
		Use:   "bump-version",
		Short: "Compute the next version from the current one and a bump policy",
		Long: `Compute the next version and write it to new_version.txt for the
following pipeline stages.

The current version comes from current_version.txt when present (written
by get-version), otherwise from --current-version. The bump policy comes
from the version labels of the triggering pull request when one can be
determined (--pr-number, or --commit-sha of a merge commit), otherwise
from --version-type, otherwise a timestamp suffix is appended.

Requires GITHUB_TOKEN environment variable to be set.`,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			// Initialize base command
			bumpVersionCmd.ConfigFile = globalConfigFile
			bumpVersionCmd.LoadConfig = loadConfig
			bumpVersionCmd.SaveConfig = saveConfig
			if err := bumpVersionCmd.Init(cobraCmd.Context()); err != nil {
				return err
			}

			return bumpVersionCmd.Run(cobraCmd.Context())
		},
	}

	bumpVersionCmd.AddRepositoryFlags(command)
	command.Flags().StringVarP(&bumpVersionCmd.CurrentVersion, "current-version", "c", "", "Current version (defaults to current_version.txt)")
	command.Flags().StringVarP(&bumpVersionCmd.VersionType, "version-type", "v", "", "Bump policy: major, minor, patch, or timestamp")
	command.Flags().IntVarP(&bumpVersionCmd.PRNumber, "pr-number", "p", 0, "Pull request whose labels select the bump policy")
	command.Flags().StringVar(&bumpVersionCmd.CommitSHA, "commit-sha", "", "Merge commit to resolve the pull request from")
	command.Flags().BoolVarP(&bumpVersionCmd.IsMerge, "is-merge", "i", false, "The triggering event is a merge to the default branch")

	return command
}

// Run executes the bump-version command
func (bc *BumpVersionCommand) Run(ctx context.Context) error {
	current, err := bc.currentVersion()
	if err != nil {
		return err
	}

	policy, err := bc.resolvePolicy(ctx)
	if err != nil {
		return err
	}

	next := current.Bump(policy, time.Now())
	slog.Info("Bumped version", "current", current, "next", next, "policy", policy)

	if err := handoff.Write(handoff.NewVersionFile, next.String()); err != nil {
		return err
	}

	fmt.Println(next)
	return nil
}

// currentVersion prefers the hand-off file written by get-version and
// falls back to the flag.
func (bc *BumpVersionCommand) currentVersion() (version.Version, error) {
	raw, err := handoff.Read(handoff.CurrentVersionFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return version.Version{}, err
		}
		raw = bc.CurrentVersion
	}
	if raw == "" {
		return version.Version{}, fmt.Errorf("current version is required (run get-version first or pass --current-version)")
	}

	current, err := version.Parse(raw)
	if err != nil {
		return version.Version{}, fmt.Errorf("current version %q is not a release version: %w", raw, err)
	}

	return current, nil
}

// resolvePolicy picks the bump policy: version labels of the
// triggering pull request first, then --version-type, then timestamp.
func (bc *BumpVersionCommand) resolvePolicy(ctx context.Context) (version.Policy, error) {
	prNumber := bc.pullRequestNumber(ctx)

	if prNumber > 0 {
		labels, err := bc.Client.PullRequestLabels(ctx, prNumber)
		if err != nil {
			slog.Warn("Failed to fetch PR labels, falling back to --version-type", "pr", prNumber, "error", err)
		} else {
			if name, ok := bc.Config.PolicyForLabels(labels); ok {
				policy, err := version.ParsePolicy(name)
				if err != nil {
					return "", fmt.Errorf("version label table maps to invalid policy %q: %w", name, err)
				}
				slog.Debug("Resolved bump policy from PR labels", "pr", prNumber, "policy", policy)
				return policy, nil
			}
			// A known PR without a version label gets a timestamp
			// bump; --version-type is not consulted.
			slog.Debug("PR has no version label, using timestamp policy", "pr", prNumber)
			return version.PolicyTimestamp, nil
		}
	}

	if bc.VersionType != "" {
		return version.ParsePolicy(bc.VersionType)
	}

	return version.PolicyTimestamp, nil
}

// pullRequestNumber returns the explicit --pr-number, or resolves one
// from the merge commit. 0 means no PR is known; resolution failures
// degrade to that rather than failing the bump.
func (bc *BumpVersionCommand) pullRequestNumber(ctx context.Context) int {
	if bc.PRNumber > 0 {
		return bc.PRNumber
	}
	if !bc.IsMerge || bc.CommitSHA == "" {
		return 0
	}

	number, err := bc.Client.PullRequestForCommit(ctx, bc.CommitSHA)
	if err != nil {
		slog.Warn("Failed to resolve PR for commit", "sha", bc.CommitSHA, "error", err)
		return 0
	}
	if number > 0 {
		slog.Debug("Resolved PR from merge commit", "sha", bc.CommitSHA, "pr", number)
	}

	return number
}
