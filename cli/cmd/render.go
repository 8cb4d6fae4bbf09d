package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/interp/lang"
	"github.com/ardnew/interp/log"
)

// Render interpolates the ${...} placeholders of a template.
type Render struct {
	EmptyOnError   bool `help:"Replace failing placeholders with empty text instead of aborting." short:"e"`
	DecodeEntities bool `help:"Decode HTML entities in placeholder expressions."`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source" optional:""`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	data, err := readInput(r.Source)
	if err != nil {
		return ErrRender.Wrap(err).With(slog.String("source", r.Source))
	}

	out, err := lang.Interpolate(ctx, string(data), scope.Vars, r.options(ctx, scope)...)
	if err != nil {
		return ErrRender.Wrap(err).With(slog.String("source", r.Source))
	}

	if _, err := io.WriteString(stdout(ctx), out); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

func (r *Render) options(ctx context.Context, scope *Scope) []lang.Option {
	opts := append([]lang.Option{}, scope.Options...)
	opts = append(opts, lang.WithEntityDecoding(r.DecodeEntities))

	if r.EmptyOnError {
		opts = append(opts, lang.WithErrorHandler(
			func(placeholder string, err error) (string, error) {
				log.WarnContext(ctx, "placeholder failed",
					slog.String("placeholder", placeholder),
					slog.Any("error", err),
				)

				return "", nil
			},
		))
	}

	return opts
}
