package cmd

import (
	"context"

	"github.com/ardnew/interp/cli/cmd/repl"
	"github.com/ardnew/interp/log"
)

// Repl starts an interactive evaluation session.
type Repl struct {
	History string `default:"${history}" help:"History file; empty disables history."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	return repl.Run(ctx, repl.Env{
		Vars:      scope.Vars,
		Constants: scope.Constants,
		Options:   scope.Options,
	}, r.History, log.Default())
}
