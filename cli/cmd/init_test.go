package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := runWithConfig(t, path, VarsConfig{}, "--verbose", "--name=custom", "init")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "verbose: true\nname: custom\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInit_Exists(t *testing.T) {
	path := writeFile(t, "config.yaml", "old: true\n")

	_, err := runWithConfig(t, path, VarsConfig{}, "init")
	require.ErrorIs(t, err, ErrWriteConfig)
	assert.ErrorIs(t, err, ErrFileExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old: true\n", string(data))

	_, err = runWithConfig(t, path, VarsConfig{}, "init", "--force")
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "verbose: false\nname: interp\n", string(data))
}

func TestConfigValue(t *testing.T) {
	type custom struct{ A int }

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", false, false},
		{"empty string", "", nil},
		{"string", "x", "x"},
		{"int", 3, int64(3)},
		{"uint", uint8(3), uint64(3)},
		{"float", 1.5, 1.5},
		{"empty slice", []string{}, nil},
		{"slice", []string{"a", "", "b"}, []any{"a", "b"}},
		{"other", custom{A: 1}, "{1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, configValue(tt.in))
		})
	}
}
