// Package config implements the config command for initializing and updating release-runner configuration.
package config

import (
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/alan/release-runner/cmd"
	"github.com/spf13/cobra"
)

// configValues holds the flag values before they are merged into the
// configuration file.
type configValues struct {
	owner         string
	repo          string
	parentRepo    string
	submodulePath string
	assetPath     string
}

// NewConfigCmd creates and returns the config command
func NewConfigCmd(globalConfigFile *string, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) *cobra.Command {
	values := &configValues{}

	cobraCmd := createConfigCommand(globalConfigFile, values, loadConfig, saveConfig)
	addConfigFlags(cobraCmd, values)
	// Note: owner and repo are not marked as required since they can be auto-detected from git

	return cobraCmd
}

// createConfigCommand creates the basic config command structure
func createConfigCommand(globalConfigFile *string, values *configValues, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Initialize a new release-runner.yaml configuration file",
		Long: `Config creates or updates a release-runner.yaml file holding the
repository coordinates the release commands read their defaults from.

When run from a git repository root, it will automatically detect the
repository owner and name from the git remote origin.

Parent repository, submodule path, and asset path are optional; they are
only consumed by the update-submodule and create-release commands.`,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigWithGitDetection(*globalConfigFile, values, loadConfig, saveConfig)
		},
	}
}

// addConfigFlags adds all flags to the config command
func addConfigFlags(cobraCmd *cobra.Command, values *configValues) {
	cobraCmd.Flags().StringVarP(&values.owner, "repo-owner", "o", "", "GitHub organization or username (auto-detected from git if available)")
	cobraCmd.Flags().StringVarP(&values.repo, "repo-name", "n", "", "GitHub repository name (auto-detected from git if available)")
	cobraCmd.Flags().StringVar(&values.parentRepo, "parent-repo", "", "Parent repository for update-submodule (owner/name, or name under the same owner)")
	cobraCmd.Flags().StringVarP(&values.submodulePath, "submodule-path", "m", "", "Path of this repository's submodule inside the parent")
	cobraCmd.Flags().StringVar(&values.assetPath, "asset-path", "", "Build artifact uploaded by create-release")
}

// runConfigWithGitDetection handles config creation with git auto-detection
func runConfigWithGitDetection(configFile string, values *configValues, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) error {
	// Load existing config first to see what we already have
	config, _ := loadOrCreateConfig(configFile, loadConfig)

	// Start with provided values, fall back to existing config values
	finalOwner := values.owner
	if finalOwner == "" {
		finalOwner = config.Owner
	}

	finalRepo := values.repo
	if finalRepo == "" {
		finalRepo = config.Repo
	}

	// Try git detection for any still-missing values
	if finalOwner == "" || finalRepo == "" {
		if owner, repo, err := detectGitRepository(); err == nil {
			if finalOwner == "" {
				finalOwner = owner
				slog.Info("Auto-detected repository owner", "owner", finalOwner)
			}
			if finalRepo == "" {
				finalRepo = repo
				slog.Info("Auto-detected repository name", "repo", finalRepo)
			}
		}
	}

	// Validate required fields
	if finalOwner == "" {
		return fmt.Errorf("repository owner is required (use --repo-owner or run from a git repository)")
	}
	if finalRepo == "" {
		return fmt.Errorf("repository name is required (use --repo-name or run from a git repository)")
	}

	resolved := *values
	resolved.owner = finalOwner
	resolved.repo = finalRepo
	return runConfig(configFile, &resolved, loadConfig, saveConfig)
}

func runConfig(configFile string, values *configValues, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) error {
	config, isUpdate := loadOrCreateConfig(configFile, loadConfig)

	// Update config with provided values
	updateConfigWithProvidedValues(config, values)

	if err := saveConfig(configFile, config); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	displayConfigSuccess(configFile, config, isUpdate)
	return nil
}

// displayConfigSuccess shows the configuration success message
func displayConfigSuccess(configFile string, config *cmd.Config, isUpdate bool) {
	action := "initialized"
	if isUpdate {
		action = "updated"
	}
	fmt.Printf("Successfully %s %s with:\n", action, configFile)
	fmt.Printf("  Repository Owner: %s\n", config.Owner)
	fmt.Printf("  Repository Name: %s\n", config.Repo)
	if config.ParentRepo != "" {
		fmt.Printf("  Parent Repository: %s\n", config.ParentRepo)
	}
	if config.SubmodulePath != "" {
		fmt.Printf("  Submodule Path: %s\n", config.SubmodulePath)
	}
	if config.AssetPath != "" {
		fmt.Printf("  Asset Path: %s\n", config.AssetPath)
	}
}

// loadOrCreateConfig loads existing config or creates a new one
func loadOrCreateConfig(configFile string, loadConfig func(string) (*cmd.Config, error)) (*cmd.Config, bool) {
	if config, err := loadConfig(configFile); err == nil {
		// File exists and was loaded successfully
		return config, true
	}

	// File doesn't exist or couldn't be loaded, create new config
	return &cmd.Config{}, false
}

// updateConfigWithProvidedValues updates config with any non-empty provided values
func updateConfigWithProvidedValues(config *cmd.Config, values *configValues) {
	if values.owner != "" {
		config.Owner = values.owner
	}
	if values.repo != "" {
		config.Repo = values.repo
	}
	if values.parentRepo != "" {
		config.ParentRepo = values.parentRepo
	}
	if values.submodulePath != "" {
		config.SubmodulePath = values.submodulePath
	}
	if values.assetPath != "" {
		config.AssetPath = values.assetPath
	}
}

// detectGitRepository attempts to detect the repository coordinates
// from the git remote origin
func detectGitRepository() (string, string, error) {
	if !isGitRepository() {
		return "", "", fmt.Errorf("not in a git repository")
	}

	owner, repo, err := parseGitRemote()
	if err != nil {
		return "", "", fmt.Errorf("failed to parse git remote: %w", err)
	}

	return owner, repo, nil
}

// isGitRepository checks if current directory is in a git repository
func isGitRepository() bool {
	gitCmd := exec.Command("git", "rev-parse", "--git-dir")
	return gitCmd.Run() == nil
}

// parseGitRemote extracts owner and repo from git remote origin
func parseGitRemote() (string, string, error) {
	gitCmd := exec.Command("git", "remote", "get-url", "origin")
	output, err := gitCmd.Output()
	if err != nil {
		return "", "", err
	}

	remoteURL := strings.TrimSpace(string(output))
	return parseRemoteURL(remoteURL)
}

// parseRemoteURL extracts owner and repo from various GitHub URL formats
func parseRemoteURL(remoteURL string) (string, string, error) {
	// Handle SSH format: git@github.com:owner/repo.git
	sshRegex := regexp.MustCompile(`git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)
	if matches := sshRegex.FindStringSubmatch(remoteURL); len(matches) == 3 {
		return matches[1], matches[2], nil
	}

	// Handle HTTPS format: https://github.com/owner/repo.git
	httpsRegex := regexp.MustCompile(`https://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	if matches := httpsRegex.FindStringSubmatch(remoteURL); len(matches) == 3 {
		return matches[1], matches[2], nil
	}

	return "", "", fmt.Errorf("unable to parse GitHub remote URL: %s", remoteURL)
}
