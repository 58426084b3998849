package createrelease

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/alan/release-runner/cmd"
	"github.com/alan/release-runner/internal/commands"
	"github.com/alan/release-runner/internal/github"
	"github.com/alan/release-runner/internal/handoff"
	"github.com/alan/release-runner/internal/version"
	"github.com/spf13/cobra"
)

// DefaultAssetPath is the artifact uploaded to the release unless
// --asset-path or the config file says otherwise.
const DefaultAssetPath = "release.tar.gz"

// CreateReleaseCommand encapsulates the create-release command with common functionality
type CreateReleaseCommand struct {
	commands.BaseCommand
	CurrentVersion string
	IsDraft        bool
	IsProd         bool
	SkipAsset      bool
	AssetPath      string
}

// NewCreateReleaseCmd creates and returns the create-release command
func NewCreateReleaseCmd(globalConfigFile *string, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) *cobra.Command {
	createReleaseCmd := &CreateReleaseCommand{}

	command := &cobra.Command{
		Use:   "create-release",
		Short: "Create a GitHub release for the new version",
		Long: `Create a GitHub release tagged with the new version and upload the
build artifact to it.

The version comes from new_version.txt when present (written by
bump-version), otherwise from --current-version. The release is created
as a draft unless --is-prod is set.

Requires GITHUB_TOKEN environment variable to be set.`,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			// Initialize base command
			createReleaseCmd.ConfigFile = globalConfigFile
			createReleaseCmd.LoadConfig = loadConfig
			createReleaseCmd.SaveConfig = saveConfig
			if err := createReleaseCmd.Init(cobraCmd.Context()); err != nil {
				return err
			}

			return createReleaseCmd.Run(cobraCmd.Context())
		},
	}

	createReleaseCmd.AddRepositoryFlags(command)
	command.Flags().StringVarP(&createReleaseCmd.CurrentVersion, "current-version", "c", "", "Version to release (defaults to new_version.txt)")
	command.Flags().BoolVarP(&createReleaseCmd.IsDraft, "is-draft", "d", true, "Create the release as a draft")
	command.Flags().BoolVarP(&createReleaseCmd.IsProd, "is-prod", "r", false, "Publish the release immediately")
	command.Flags().BoolVarP(&createReleaseCmd.SkipAsset, "skip-asset", "s", false, "Skip uploading the release asset")
	command.Flags().StringVar(&createReleaseCmd.AssetPath, "asset-path", "", "Build artifact to upload (defaults to "+DefaultAssetPath+")")
	command.MarkFlagsMutuallyExclusive("is-draft", "is-prod")

	return command
}

// Run executes the create-release command
func (cc *CreateReleaseCommand) Run(ctx context.Context) error {
	next, err := cc.releaseVersion()
	if err != nil {
		return err
	}

	release, err := cc.Client.CreateRelease(ctx, github.ReleaseRequest{
		TagName:    next.String(),
		Name:       "Release " + next.String(),
		Body:       "Release version " + next.String(),
		Draft:      cc.IsDraft && !cc.IsProd,
		Prerelease: false,
	})
	if err != nil {
		return err
	}

	slog.Info("Created release", "tag", release.TagName, "release_id", release.ID, "draft", release.Draft)

	if !cc.SkipAsset {
		assetPath := cc.assetPath()
		if err := cc.Client.UploadReleaseAsset(ctx, release.ID, assetPath); err != nil {
			return err
		}
		slog.Info("Uploaded release asset", "path", assetPath, "release_id", release.ID)
	}

	if release.Draft {
		fmt.Printf("✅ Created draft release %s (ID %d)\n", release.TagName, release.ID)
	} else {
		fmt.Printf("✅ Created release %s (ID %d)\n", release.TagName, release.ID)
	}

	return nil
}

// releaseVersion prefers the hand-off file written by bump-version and
// falls back to the flag.
func (cc *CreateReleaseCommand) releaseVersion() (version.Version, error) {
	raw, err := handoff.Read(handoff.NewVersionFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return version.Version{}, err
		}
		raw = cc.CurrentVersion
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

// assetPath resolves the artifact to upload: flag first, then the
// config file, then the conventional release.tar.gz.
func (cc *CreateReleaseCommand) assetPath() string {
	if cc.AssetPath != "" {
		return cc.AssetPath
	}
	if cc.Config.AssetPath != "" {
		return cc.Config.AssetPath
	}
	return DefaultAssetPath
}
