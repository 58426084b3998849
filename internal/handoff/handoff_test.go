package handoff

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteThenRead(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{name: "plain version", version: "v1.2.3"},
		{name: "timestamp version", version: "v1.2.3-20240116120000"},
		{name: "seed version", version: "v0.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), CurrentVersionFile)

			if err := Write(path, tt.version); err != nil {
				t.Fatalf("Write() unexpected error: %v", err)
			}

			got, err := Read(path)
			if err != nil {
				t.Fatalf("Read() unexpected error: %v", err)
			}
			if got != tt.version {
				t.Errorf("Read() = %q, want %q", got, tt.version)
			}
		})
	}
}

func TestReadTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), NewVersionFile)
	if err := os.WriteFile(path, []byte("v1.2.3\n"), 0600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}
	if got != "v1.2.3" {
		t.Errorf("Read() = %q, want %q", got, "v1.2.3")
	}
}

// Callers fall back to flag values when the file is missing, so the
// not-exist condition must survive the error wrapping.
func TestReadMissingFileIsNotExist(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), CurrentVersionFile))
	if err == nil {
		t.Fatal("Read() expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read() error = %v, want fs.ErrNotExist in chain", err)
	}
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), NewVersionFile)

	if err := Write(path, "v1.0.0"); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if err := Write(path, "v2.0.0"); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}
	if got != "v2.0.0" {
		t.Errorf("Read() = %q, want %q", got, "v2.0.0")
	}
}
