// Package handoff reads and writes the version files that pass a
// computed version from one pipeline stage to the next.
package handoff

import (
	"fmt"
	"os"
	"strings"
)

const (
	// CurrentVersionFile is written by get-version and read by bump-version.
	CurrentVersionFile = "current_version.txt"
	// NewVersionFile is written by bump-version and read by the release
	// and submodule stages.
	NewVersionFile = "new_version.txt"
)

// Read returns the version string stored in a hand-off file. Trailing
// whitespace is tolerated. A missing file surfaces as fs.ErrNotExist
// through the error chain.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Hand-off files live in the working directory
	if err != nil {
		return "", fmt.Errorf("failed to read version file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write stores a version string in a hand-off file, replacing any
// previous content.
func Write(path, version string) error {
	if err := os.WriteFile(path, []byte(version), 0600); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}
	return nil
}
