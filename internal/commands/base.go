// Package commands provides the shared initialization all
// release-runner commands build on.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/alan/release-runner/cmd"
	"github.com/alan/release-runner/internal/config"
	"github.com/alan/release-runner/internal/github"
)

// BaseCommand provides common fields and initialization for all commands
type BaseCommand struct {
	ConfigFile *string
	LoadConfig func(string) (*cmd.Config, error)
	SaveConfig func(string, *cmd.Config) error

	// Owner and Repo are resolved from flags first, then the config
	// file.
	Owner string
	Repo  string

	Config *cmd.Config
	Client *github.Client
}

// AddRepositoryFlags registers the repository selection flags shared by
// every command that talks to the API.
func (bc *BaseCommand) AddRepositoryFlags(cobraCmd *cobra.Command) {
	cobraCmd.Flags().StringVarP(&bc.Owner, "repo-owner", "o", "", "Repository owner (defaults to the config file)")
	cobraCmd.Flags().StringVarP(&bc.Repo, "repo-name", "n", "", "Repository name (defaults to the config file)")
}

// Init resolves the repository, reads the API token, and builds the
// GitHub client. A missing config file is not an error; flags alone
// can carry the repository.
func (bc *BaseCommand) Init(ctx context.Context) error {
	cfg, err := bc.LoadConfig(*bc.ConfigFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg = &cmd.Config{}
	}
	bc.Config = cfg

	if bc.Owner == "" {
		bc.Owner = cfg.Owner
	}
	if bc.Repo == "" {
		bc.Repo = cfg.Repo
	}

	if bc.Owner == "" {
		return fmt.Errorf("repository owner is required (use --repo-owner or the config file)")
	}
	if bc.Repo == "" {
		return fmt.Errorf("repository name is required (use --repo-name or the config file)")
	}

	token, err := config.GitHubToken()
	if err != nil {
		return err
	}

	bc.Client, err = newClient(ctx, token, cfg, bc.Owner, bc.Repo)
	return err
}

// newClient builds the API client, honoring an enterprise base URL
// when the config sets one.
func newClient(ctx context.Context, token string, cfg *cmd.Config, owner, repo string) (*github.Client, error) {
	if cfg.APIURL != "" {
		return github.NewEnterpriseClient(ctx, token, cfg.APIURL, cfg.UploadURL, owner, repo)
	}
	return github.NewClient(ctx, token, owner, repo), nil
}
