package cmd

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/ardnew/interp/pkg"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the named kong variable, if a kong context is present.
func kongVar(ctx context.Context, name string) (string, bool) {
	ktx := kongContextFrom(ctx)
	if ktx == nil || ktx.Model == nil {
		return "", false
	}

	v, ok := ktx.Model.Vars()[name]

	return v, ok
}

// stdout returns the writer commands print results to: the kong
// application's standard output if one is configured, otherwise os.Stdout.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

type varsConfigKey struct{}

// scopeLoader loads a Scope at most once per context.
type scopeLoader struct {
	load func() (*Scope, error)
}

// WithVarsConfig returns a new context.Context from which commands load
// their [Scope] using cfg. The scope is loaded on first use, so commands
// that need no variables never read the variable files.
func WithVarsConfig(ctx context.Context, cfg VarsConfig) context.Context {
	loader := scopeLoader{
		load: sync.OnceValues(func() (*Scope, error) {
			return LoadScope(ctx, cfg)
		}),
	}

	return context.WithValue(ctx, varsConfigKey{}, loader)
}

// scopeFrom returns the Scope configured in ctx, or an empty scope with the
// builtins if none was configured.
func scopeFrom(ctx context.Context) (*Scope, error) {
	if loader, ok := ctx.Value(varsConfigKey{}).(scopeLoader); ok {
		return loader.load()
	}

	return LoadScope(ctx, VarsConfig{Builtins: true})
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// openInput opens the named file, or standard input for "" and "-", behind
// a read-ahead buffer. The returned closer releases both.
func openInput(name string) (io.ReadCloser, error) {
	var src io.ReadCloser = os.Stdin

	if name != "" && name != stdinSource {
		f, err := os.Open(name)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}

		src = f
	}

	ra := readahead.NewReader(src)

	return readCloser{Reader: ra, close: func() error {
		ra.Close()

		if src == os.Stdin {
			return nil
		}

		return src.Close()
	}}, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

// readInput reads all of the named input.
func readInput(name string) ([]byte, error) {
	r, err := openInput(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}

	return b, nil
}
