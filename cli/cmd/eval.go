package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/interp/lang"
	"github.com/ardnew/interp/pkg"
)

// Output formats of evaluated values.
const (
	outputNative = "native"
	outputJSON   = "json"
	outputYAML   = "yaml"
)

// Eval evaluates expressions and prints their values.
type Eval struct {
	Output string `default:"native" enum:"native,json,yaml" help:"Output format (${enum})." short:"o"`
	Indent int    `default:"2"                               help:"Indent width for JSON and YAML output; 0 is compact." short:"i"`

	Expr []string `arg:"" help:"Expressions to evaluate." name:"expr"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	for i, src := range e.Expr {
		x, err := lang.Compile(ctx, src, scope.Options...)
		if err != nil {
			return ErrEvaluate.Wrap(err).With(slog.String("expr", src))
		}

		v, err := x.Evaluate(ctx, scope.Vars, scope.Options...)
		if err != nil {
			return ErrEvaluate.Wrap(err).With(slog.String("expr", src))
		}

		if e.Output == outputYAML && i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return ErrWriteOutput.Wrap(err)
			}
		}

		if err := writeValue(ctx, w, v, e.Output, e.Indent); err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("expr", src))
		}
	}

	return nil
}

// writeValue writes v to w in the given output format followed by a newline.
func writeValue(ctx context.Context, w io.Writer, v any, format string, indent int) error {
	switch strings.ToLower(format) {
	case outputNative, "":
		_, err := fmt.Fprintln(w, lang.Format(v))

		return err

	case outputJSON:
		if err := lang.FormatJSON(w, v, indent); err != nil {
			return pkg.ErrJSONMarshal.Wrap(err)
		}

		return nil

	case outputYAML:
		if err := lang.FormatYAML(ctx, w, v, indent); err != nil {
			return pkg.ErrYAMLMarshal.Wrap(err)
		}

		return nil

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q (valid formats: %s, %s, %s)",
			format, outputNative, outputJSON, outputYAML)
	}
}
