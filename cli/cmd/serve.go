package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/interp/lang"
	"github.com/ardnew/interp/log"
	"github.com/ardnew/interp/pkg"
	"github.com/ardnew/interp/profile"
	"github.com/ardnew/interp/server"
)

// Serve serves the evaluation and rendering HTTP API.
type Serve struct {
	Addr            string        `default:":8080" help:"Address to listen on." short:"a"`
	CORSOrigin      []string      `help:"Allow cross-origin requests from origin (repeatable)." name:"cors-origin" sep:"none"`
	MaxBody         int64         `default:"1048576" help:"Maximum request body size in bytes."`
	ShutdownTimeout time.Duration `default:"10s" help:"Time allowed for in-flight requests on shutdown."`
	CacheLimit      int           `default:"1024" help:"Maximum number of compiled expressions kept in memory; 0 disables the cache."`
}

// Run executes the serve command. It returns when ctx is canceled and the
// server has shut down.
func (s *Serve) Run(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.Addr)
	if err != nil {
		return ErrServe.Wrap(pkg.ErrServe.Wrap(err)).With(slog.String("addr", s.Addr))
	}

	return s.serve(ctx, ln)
}

// serve serves on ln until ctx is canceled, then shuts the server down
// gracefully. It closes ln.
func (s *Serve) serve(ctx context.Context, ln net.Listener) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		ln.Close()

		return err
	}

	defer lang.SetCacheLimit(lang.SetCacheLimit(s.CacheLimit))

	handler := server.New(scope.Vars,
		server.WithLogger(log.Default()),
		server.WithEngineOptions(scope.Options...),
		server.WithCORS(s.CORSOrigin...),
		server.WithMaxBodyBytes(s.MaxBody),
		server.WithProfiler(profile.Enabled),
	)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.InfoContext(ctx, "listening", slog.String("addr", ln.Addr().String()))

		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ShutdownTimeout)
		defer cancel()

		log.InfoContext(ctx, "shutting down", slog.Duration("timeout", s.ShutdownTimeout))

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return ErrServe.Wrap(pkg.ErrServe.Wrap(err)).With(slog.String("addr", ln.Addr().String()))
	}

	return nil
}
