package bumpversion

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"

	"github.com/alan/release-runner/cmd"
	"github.com/alan/release-runner/internal/commands"
	"github.com/alan/release-runner/internal/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory to dir for the duration of the
// test, restoring the previous one during cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

func newTestClient(t *testing.T) (*github.Client, *http.ServeMux) {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := github.NewEnterpriseClient(context.Background(), "test-token", server.URL, server.URL, "testowner", "testrepo")
	require.NoError(t, err)

	return client, mux
}

func newCommand(client *github.Client) *BumpVersionCommand {
	return &BumpVersionCommand{
		BaseCommand: commands.BaseCommand{
			Owner:  "testowner",
			Repo:   "testrepo",
			Config: &cmd.Config{Owner: "testowner", Repo: "testrepo"},
			Client: client,
		},
	}
}

func newVersionFile(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile("new_version.txt")
	require.NoError(t, err)
	return string(data)
}

func TestRunBumpsFromHandoffFile(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("v1.2.3"), 0600))

	bumpCmd := newCommand(nil)
	bumpCmd.VersionType = "patch"

	require.NoError(t, bumpCmd.Run(context.Background()))

	assert.Equal(t, "v1.2.4", newVersionFile(t))
}

func TestRunBumpsFromFlag(t *testing.T) {
	chdir(t,t.TempDir())

	bumpCmd := newCommand(nil)
	bumpCmd.CurrentVersion = "v2.0.0"
	bumpCmd.VersionType = "major"

	require.NoError(t, bumpCmd.Run(context.Background()))

	assert.Equal(t, "v3.0.0", newVersionFile(t))
}

func TestRunHandoffFileWinsOverFlag(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("v1.2.3"), 0600))

	bumpCmd := newCommand(nil)
	bumpCmd.CurrentVersion = "v9.9.9"
	bumpCmd.VersionType = "minor"

	require.NoError(t, bumpCmd.Run(context.Background()))

	assert.Equal(t, "v1.3.0", newVersionFile(t))
}

func TestRunMissingCurrentVersion(t *testing.T) {
	chdir(t,t.TempDir())

	bumpCmd := newCommand(nil)
	bumpCmd.VersionType = "patch"

	err := bumpCmd.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "current version is required")
}

func TestRunMalformedCurrentVersion(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("1.2.3"), 0600))

	bumpCmd := newCommand(nil)
	bumpCmd.VersionType = "patch"

	err := bumpCmd.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a release version")
}

func TestRunInvalidVersionType(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("v1.2.3"), 0600))

	bumpCmd := newCommand(nil)
	bumpCmd.VersionType = "huge"

	err := bumpCmd.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown version type")
}

func TestRunDefaultsToTimestamp(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("v1.2.3"), 0600))

	bumpCmd := newCommand(nil)

	require.NoError(t, bumpCmd.Run(context.Background()))

	assert.Regexp(t, regexp.MustCompile(`^v1\.2\.3-\d{14}$`), newVersionFile(t))
}

func TestRunPolicyFromPRLabels(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("v1.2.3"), 0600))

	client, mux := newTestClient(t)
	mux.HandleFunc("/api/v3/repos/testowner/testrepo/issues/42/labels", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name": "bug"}, {"name": "semver:minor"}]`)
	})

	bumpCmd := newCommand(client)
	bumpCmd.PRNumber = 42

	require.NoError(t, bumpCmd.Run(context.Background()))

	assert.Equal(t, "v1.3.0", newVersionFile(t))
}

func TestRunKnownPRWithoutVersionLabel(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("v1.2.3"), 0600))

	client, mux := newTestClient(t)
	mux.HandleFunc("/api/v3/repos/testowner/testrepo/issues/42/labels", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name": "bug"}]`)
	})

	bumpCmd := newCommand(client)
	bumpCmd.PRNumber = 42
	bumpCmd.VersionType = "major"

	require.NoError(t, bumpCmd.Run(context.Background()))

	// An unlabeled PR bumps the timestamp even when --version-type is
	// set.
	assert.Regexp(t, regexp.MustCompile(`^v1\.2\.3-\d{14}$`), newVersionFile(t))
}

func TestRunLabelFetchErrorFallsBackToFlag(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("v1.2.3"), 0600))

	client, mux := newTestClient(t)
	mux.HandleFunc("/api/v3/repos/testowner/testrepo/issues/42/labels", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "server error"}`)
	})

	bumpCmd := newCommand(client)
	bumpCmd.PRNumber = 42
	bumpCmd.VersionType = "minor"

	require.NoError(t, bumpCmd.Run(context.Background()))

	assert.Equal(t, "v1.3.0", newVersionFile(t))
}

func TestRunResolvesPRFromMergeCommit(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("v1.2.3"), 0600))

	client, mux := newTestClient(t)
	mux.HandleFunc("/api/v3/repos/testowner/testrepo/commits/abc123/pulls", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"number": 7}]`)
	})
	mux.HandleFunc("/api/v3/repos/testowner/testrepo/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name": "semver:major"}]`)
	})

	bumpCmd := newCommand(client)
	bumpCmd.IsMerge = true
	bumpCmd.CommitSHA = "abc123"

	require.NoError(t, bumpCmd.Run(context.Background()))

	assert.Equal(t, "v2.0.0", newVersionFile(t))
}

func TestRunPRResolutionFailureDegradesToFlag(t *testing.T) {
	chdir(t,t.TempDir())
	require.NoError(t, os.WriteFile("current_version.txt", []byte("v1.2.3"), 0600))

	client, mux := newTestClient(t)
	mux.HandleFunc("/api/v3/repos/testowner/testrepo/commits/abc123/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "server error"}`)
	})

	bumpCmd := newCommand(client)
	bumpCmd.IsMerge = true
	bumpCmd.CommitSHA = "abc123"
	bumpCmd.VersionType = "patch"

	require.NoError(t, bumpCmd.Run(context.Background()))

	assert.Equal(t, "v1.2.4", newVersionFile(t))
}

func TestNewBumpVersionCmd(t *testing.T) {
	configFile := "release-runner.yaml"
	loadConfig := func(string) (*cmd.Config, error) {
		return &cmd.Config{Owner: "testowner", Repo: "testrepo"}, nil
	}
	saveConfig := func(string, *cmd.Config) error { return nil }

	command := NewBumpVersionCmd(&configFile, loadConfig, saveConfig)

	assert.Equal(t, "bump-version", command.Use)
	for _, flag := range []string{"current-version", "version-type", "pr-number", "commit-sha", "is-merge", "repo-owner", "repo-name"} {
		assert.NotNil(t, command.Flags().Lookup(flag), "missing flag %s", flag)
	}
}
