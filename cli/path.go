package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/interp/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// baseHistory is the name of the REPL history file in the cache directory.
const baseHistory = "history"

// defaultDirMode is the permission mode of created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the configuration directory
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cachePath returns the path formed by joining the cache directory with
// elem.
func cachePath(elem ...string) string {
	return filepath.Join(append([]string{pkg.CacheDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
