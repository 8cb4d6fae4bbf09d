package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

// testCLI mirrors the command tree of the interp binary with the global
// variable flags left to the VarsConfig passed to run.
type testCLI struct {
	Verbose bool   `help:"Unused global flag."`
	Name    string `default:"interp" help:"Unused global flag."`

	Eval    Eval    `cmd:""`
	Render  Render  `cmd:""`
	Inspect Inspect `cmd:""`
	Init    Init    `cmd:""`
}

// run parses args and runs the selected command with the variables of cfg.
// It returns the command's standard output.
func run(t *testing.T, cfg VarsConfig, args ...string) (string, error) {
	t.Helper()

	return runWithConfig(t, filepath.Join(t.TempDir(), "config.yaml"), cfg, args...)
}

// runWithConfig is run with the configuration file at configPath.
func runWithConfig(t *testing.T, configPath string, cfg VarsConfig, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	var cli testCLI

	parser, err := kong.New(&cli,
		kong.Name("interp"),
		kong.Writers(&out, &out),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		kong.Vars{ConfigIdentifier: configPath},
	)
	require.NoError(t, err)

	ktx, err := parser.Parse(args)
	require.NoError(t, err)

	ctx := WithVarsConfig(WithContext(t.Context(), ktx), cfg)
	ktx.BindTo(ctx, (*context.Context)(nil))

	err = ktx.Run()

	return out.String(), err
}

// writeFile writes data to a new file in a test directory and returns its
// path.
func writeFile(t *testing.T, name, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	return path
}
