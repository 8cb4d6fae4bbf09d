package cli

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/interp/cli/cmd"
	"github.com/ardnew/interp/pkg"
)

// CLI is the top-level command-line interface for interp.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Vars     []string `help:"Variables file, a YAML or JSON mapping; '-' is stdin (repeatable)."     placeholder:"FILE"      sep:"none" short:"v"`
	Define   []string `help:"Define variable NAME as the value of a host expression (repeatable)."   placeholder:"NAME=EXPR" sep:"none" short:"D"`
	Constant []string `help:"Define parser constant NAME as the value of a host expression."         placeholder:"NAME=EXPR" sep:"none" short:"C"`
	Builtins bool     `default:"true" help:"Provide the env, sys and path builtin objects." negatable:""`

	Render  cmd.Render  `cmd:"" default:"withargs" help:"Interpolate the $${...} placeholders of a template"`
	Eval    cmd.Eval    `cmd:""                    help:"Evaluate expressions"`
	Inspect cmd.Inspect `cmd:""                    help:"Show the tokens or parse tree of an expression"`
	Repl    cmd.Repl    `cmd:""                    help:"Start an interactive session"`
	Serve   cmd.Serve   `cmd:""                    help:"Serve the evaluation HTTP API"`
	Init    cmd.Init    `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the interp CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, os.Stdout, args...)
}

func run(
	ctx context.Context,
	exit func(code int),
	stdout io.Writer,
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		"version":              pkg.Version,
		cmd.ConfigIdentifier:  configFilePath,
		cmd.CacheIdentifier:   cachePath(),
		cmd.HistoryIdentifier: cachePath(baseHistory),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, os.Stderr),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithVarsConfig(ctx, cmd.VarsConfig{
		Builtins:  cli.Builtins,
		Files:     cli.Vars,
		Defines:   cli.Define,
		Constants: cli.Constant,
	})

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
