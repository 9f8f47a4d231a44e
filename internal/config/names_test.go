package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRenames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
"2243": fi-cartA-014
"2223": fi-cartA-013
2258: fi-cartA-017
`), 0600))

	renames, err := LoadRenames(path)
	require.NoError(t, err)
	assert.Equal(t, []Rename{
		{ID: 2223, Name: "fi-cartA-013"},
		{ID: 2243, Name: "fi-cartA-014"},
		{ID: 2258, Name: "fi-cartA-017"},
	}, renames)
}

func TestParseRenamesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"non numeric id", `abc: ipad`},
		{"empty name", `"12": ""`},
		{"duplicate name", "\"1\": cart-01\n\"2\": CART-01\n"},
		{"not a mapping", `- 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRenames([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoadRenamesMissingFile(t *testing.T) {
	_, err := LoadRenames(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
