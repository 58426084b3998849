package updatesubmodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmoduleRegistered(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    string
		want    bool
	}{
		{
			name:    "declared",
			content: "[submodule \"modules/app\"]\n\tpath = modules/app\n\turl = https://github.com/testowner/testrepo.git\n",
			path:    "modules/app",
			want:    true,
		},
		{
			name:    "section name differs from path",
			content: "[submodule \"legacy-name\"]\n\tpath = modules/app\n\turl = https://github.com/testowner/testrepo.git\n",
			path:    "modules/app",
			want:    true,
		},
		{
			name:    "other entries only",
			content: "[submodule \"modules/other\"]\n\tpath = modules/other\n\turl = https://github.com/testowner/other.git\n",
			path:    "modules/app",
			want:    false,
		},
		{
			name:    "empty file",
			content: "",
			path:    "modules/app",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := submoduleRegistered([]byte(tt.content), tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmoduleRegisteredMalformed(t *testing.T) {
	_, err := submoduleRegistered([]byte("[submodule \"broken\n"), "modules/app")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse .gitmodules")
}

func TestAppendSubmoduleEntry(t *testing.T) {
	entry := "[submodule \"modules/app\"]\n\tpath = modules/app\n\turl = https://github.com/testowner/testrepo.git\n"

	got := appendSubmoduleEntry(nil, "modules/app", "https://github.com/testowner/testrepo.git")
	assert.Equal(t, entry, string(got))

	existing := "[submodule \"modules/other\"]\n\tpath = modules/other\n\turl = https://github.com/testowner/other.git\n"
	got = appendSubmoduleEntry([]byte(existing), "modules/app", "https://github.com/testowner/testrepo.git")
	assert.Equal(t, existing+entry, string(got))

	registered, err := submoduleRegistered(got, "modules/app")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestAppendSubmoduleEntryMissingTrailingNewline(t *testing.T) {
	existing := "[submodule \"modules/other\"]\n\tpath = modules/other"

	got := appendSubmoduleEntry([]byte(existing), "modules/app", "https://github.com/testowner/testrepo.git")

	assert.Equal(t, existing+"\n[submodule \"modules/app\"]\n\tpath = modules/app\n\turl = https://github.com/testowner/testrepo.git\n", string(got))
}
