// Package cli contains the command line interface for interp.
//
// # Usage
//
// Given only a source argument, interp renders a template file or standard
// input ('-'):
//
//	interp --vars site.yaml page.html
//	echo 'Hello, ${env.USER}!' | interp -
//
// Expressions are evaluated with the eval subcommand:
//
//	interp -v site.yaml eval 'page.tags[0]' --output json
//
// # Variables
//
//   - --vars, -v: Load a YAML or JSON mapping of variables ('-' is stdin)
//   - --define, -D: Define a variable from an expr-lang host expression,
//     as in -D 'year=now().Year()'
//   - --constant, -C: Define a parser constant, as in -C 'LIMIT=10'
//   - --no-builtins: Omit the env, sys and path objects
//
// # Configuration
//
// Flag defaults are read from config.yaml (or config.json) in the user
// configuration directory. The init subcommand writes the current global
// flags there:
//
//	interp --log-level=debug --vars ~/site.yaml init
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-color: Colorize log output (default when stderr is a terminal)
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o interp .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
//
// The serve subcommand of a pprof build also exposes the net/http/pprof
// handlers under /debug.
package cli
