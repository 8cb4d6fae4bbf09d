// Package cmd implements the interp subcommands: eval, render, inspect,
// init, repl and serve.
//
// Commands share a [Scope] of variables and engine options, loaded lazily
// from the [VarsConfig] that the cli package stores in the context with
// [WithVarsConfig].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"

	// HistoryIdentifier is the kong variable identifier containing the path to
	// the REPL history file.
	HistoryIdentifier = "history"
)
