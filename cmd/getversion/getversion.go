package getversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alan/release-runner/cmd"
	"github.com/alan/release-runner/internal/commands"
	"github.com/alan/release-runner/internal/github"
	"github.com/alan/release-runner/internal/handoff"
	"github.com/alan/release-runner/internal/version"
	"github.com/spf13/cobra"
)

// GetVersionCommand encapsulates the get-version command with common functionality
type GetVersionCommand struct {
	commands.BaseCommand
}

// NewGetVersionCmd creates and returns the get-version command
func NewGetVersionCmd(globalConfigFile *string, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) *cobra.Command {
	getVersionCmd := &GetVersionCommand{}

	command := &cobra.Command{
		Use:   "get-version",
		Short: "Resolve the current version from the latest GitHub release",
		Long: `Resolve the latest published release of the repository, write its version
to current_version.txt for the following pipeline stages, and print it.

Draft and prerelease releases are ignored. A repository with no published
releases resolves to v0.0.0 so the first bump produces an initial version.

Requires GITHUB_TOKEN environment variable to be set.`,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			// Initialize base command
			getVersionCmd.ConfigFile = globalConfigFile
			getVersionCmd.LoadConfig = loadConfig
			getVersionCmd.SaveConfig = saveConfig
			if err := getVersionCmd.Init(cobraCmd.Context()); err != nil {
				return err
			}

			return getVersionCmd.Run(cobraCmd.Context())
		},
	}

	getVersionCmd.AddRepositoryFlags(command)

	return command
}

// Run executes the get-version command
func (gc *GetVersionCommand) Run(ctx context.Context) error {
	current, err := currentVersion(ctx, gc.Client)
	if err != nil {
		return err
	}

	if err := handoff.Write(handoff.CurrentVersionFile, current.String()); err != nil {
		return err
	}

	fmt.Println(current)
	return nil
}

// currentVersion resolves the latest published release tag. A
// repository without releases starts from the seed version.
func currentVersion(ctx context.Context, client *github.Client) (version.Version, error) {
	release, err := client.LatestRelease(ctx)
	if errors.Is(err, github.ErrNoReleases) {
		slog.Warn("No published releases found, starting from seed version", "version", version.Seed)
		return version.Seed, nil
	}
	if err != nil {
		return version.Version{}, err
	}

	slog.Debug("Resolved latest release", "tag", release.TagName, "release_id", release.ID)

	current, err := version.Parse(release.TagName)
	if err != nil {
		return version.Version{}, fmt.Errorf("latest release tag %q is not a release version: %w", release.TagName, err)
	}

	return current, nil
}
