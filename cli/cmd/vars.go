package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/interp/lang"
	"github.com/ardnew/interp/log"
	"github.com/ardnew/interp/pkg"
)

// VarsConfig describes where the variables of a [Scope] come from. Sources
// are applied in field order, so definitions see the builtins and every
// variables file, and constants see all variables.
type VarsConfig struct {
	// Builtins adds the env, sys and path objects.
	Builtins bool
	// Environ replaces the process environment seen by the builtins.
	Environ []string
	// Files are YAML or JSON mappings merged in order; "-" is stdin.
	Files []string
	// Defines are NAME=EXPR pairs whose host expressions are evaluated with
	// the variables loaded so far.
	Defines []string
	// Constants are NAME=EXPR pairs added to the parser's constant table.
	Constants []string
}

// Scope is the variable context and engine options shared by the commands.
type Scope struct {
	Vars      lang.Vars
	Constants lang.Constants
	Options   []lang.Option
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadScope builds a Scope from cfg.
func LoadScope(ctx context.Context, cfg VarsConfig) (*Scope, error) {
	vars := lang.Vars{}

	if cfg.Builtins {
		maps.Copy(vars, lang.Builtins(cfg.Environ))
	}

	for _, file := range cfg.Files {
		data, err := readInput(file)
		if err != nil {
			return nil, ErrLoadVars.Wrap(err).With(slog.String("file", file))
		}

		loaded, err := DecodeVars(data)
		if err != nil {
			return nil, ErrLoadVars.Wrap(err).With(slog.String("file", file))
		}

		maps.Copy(vars, loaded)

		log.DebugContext(ctx, "loaded variables",
			slog.String("file", file),
			slog.Int("count", len(loaded)),
		)
	}

	for _, def := range cfg.Defines {
		name, value, err := define(def, vars)
		if err != nil {
			return nil, ErrLoadVars.Wrap(err).With(slog.String("define", def))
		}

		vars[name] = value
	}

	scope := &Scope{
		Vars:      vars,
		Constants: lang.DefaultConstants(),
		Options:   []lang.Option{lang.WithLogger(log.Default())},
	}

	for _, def := range cfg.Constants {
		name, value, err := define(def, vars)
		if err != nil {
			return nil, ErrLoadVars.Wrap(err).With(slog.String("constant", def))
		}

		scope.Constants = scope.Constants.With(name, value)
	}

	if len(cfg.Constants) > 0 {
		scope.Options = append(scope.Options, lang.WithConstants(scope.Constants))
	}

	return scope, nil
}

// DecodeVars decodes a YAML or JSON mapping into variables, preserving the
// order of nested mappings. An empty document yields no variables.
func DecodeVars(data []byte) (lang.Vars, error) {
	var doc any

	err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap())
	if err != nil {
		return nil, pkg.ErrDecodeVars.Wrap(err)
	}

	switch doc := doc.(type) {
	case nil:
		return lang.Vars{}, nil

	case yaml.MapSlice:
		vars := make(lang.Vars, len(doc))
		for _, item := range doc {
			vars[fmt.Sprint(item.Key)] = lang.FromNative(item.Value)
		}

		return vars, nil

	default:
		return nil, pkg.ErrDecodeVars.Wrapf("document is %T, not a mapping", doc)
	}
}

// define evaluates a NAME=EXPR definition as an expr-lang expression whose
// environment is vars.
func define(def string, vars lang.Vars) (string, any, error) {
	name, src, ok := strings.Cut(def, "=")
	name = strings.TrimSpace(name)

	if !ok || !identifier.MatchString(name) {
		return "", nil, pkg.ErrDefine.Wrapf("%q is not of the form NAME=EXPR", def)
	}

	env := hostEnv(vars)

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return "", nil, pkg.ErrDefine.Wrap(err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return "", nil, pkg.ErrDefine.Wrap(err)
	}

	return name, lang.FromNative(out), nil
}

// hostEnv converts vars to plain maps and slices for expr-lang.
func hostEnv(vars lang.Vars) map[string]any {
	env := make(map[string]any, len(vars))
	for name, v := range vars {
		env[name] = hostValue(v)
	}

	return env
}

func hostValue(v any) any {
	switch v := v.(type) {
	case *lang.Array:
		return v.Native()

	case lang.Members:
		m := make(map[string]any, len(v.Methods)+len(v.Properties)+len(v.Constants))
		for name, fn := range v.Methods {
			m[name] = fn
		}

		maps.Copy(m, v.Constants)
		maps.Copy(m, v.Properties)

		return m

	default:
		return v
	}
}
