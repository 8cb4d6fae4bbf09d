package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/interp/lang"
)

// Inspect shows the intermediate forms of an expression.
type Inspect struct {
	Tokens InspectTokens `cmd:"" help:"Print the token stream of an expression."`
	AST    InspectAST    `cmd:"" help:"Print the parse tree of an expression." name:"ast"`
}

// InspectTokens prints the token stream of an expression.
type InspectTokens struct {
	Expr string `arg:"" help:"Expression to tokenize." name:"expr"`
}

// Run executes the inspect tokens command.
func (i *InspectTokens) Run(ctx context.Context) error {
	s, err := lang.Tokenize(ctx, i.Expr)
	if err != nil {
		return ErrInspect.Wrap(err).With(slog.String("expr", i.Expr))
	}

	if err := lang.FormatTokens(stdout(ctx), s); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// InspectAST prints the parse tree of an expression.
type InspectAST struct {
	Expr string `arg:"" help:"Expression to parse." name:"expr"`
}

// Run executes the inspect ast command.
func (i *InspectAST) Run(ctx context.Context) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	x, err := lang.Compile(ctx, i.Expr, scope.Options...)
	if err != nil {
		return ErrInspect.Wrap(err).With(slog.String("expr", i.Expr))
	}

	if err := lang.Print(stdout(ctx), x.Root(), 0); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
