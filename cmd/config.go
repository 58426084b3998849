// Package cmd defines the shared configuration structure for release-runner commands.
package cmd

// Config represents the structure of release-runner.yaml. Every field
// is a default that the matching command flag overrides.
type Config struct {
	Owner         string `yaml:"owner"`
	Repo          string `yaml:"repo"`
	ParentRepo    string `yaml:"parent_repo,omitempty"`
	SubmodulePath string `yaml:"submodule_path,omitempty"`
	AssetPath     string `yaml:"asset_path,omitempty"`
	// APIURL and UploadURL point the client at a GitHub Enterprise
	// instance; empty means github.com.
	APIURL    string `yaml:"api_url,omitempty"`
	UploadURL string `yaml:"upload_url,omitempty"`
	// VersionLabels maps PR labels to the bump policy they select,
	// replacing DefaultVersionLabels when set.
	VersionLabels map[string]string `yaml:"version_labels,omitempty"`
}

// DefaultVersionLabels is the label table used when the config file
// does not define one.
var DefaultVersionLabels = map[string]string{
	"semver:major": "major",
	"semver:minor": "minor",
	"semver:patch": "patch",
}

// labelTable returns the effective label table.
func (c *Config) labelTable() map[string]string {
	if len(c.VersionLabels) > 0 {
		return c.VersionLabels
	}
	return DefaultVersionLabels
}

// PolicyForLabels returns the bump policy selected by the first label
// present in the label table, scanning labels in the order they appear
// on the pull request.
func (c *Config) PolicyForLabels(labels []string) (string, bool) {
	table := c.labelTable()
	for _, label := range labels {
		if policy, ok := table[label]; ok {
			return policy, true
		}
	}
	return "", false
}

// LabelForPolicy returns the label that selects the given policy, used
// to tag generated pull requests. When a custom table maps several
// labels to the policy the lexicographically first wins, so the choice
// is stable across runs.
func (c *Config) LabelForPolicy(policy string) (string, bool) {
	var match string
	for label, p := range c.labelTable() {
		if p != policy {
			continue
		}
		if match == "" || label < match {
			match = label
		}
	}
	return match, match != ""
}
