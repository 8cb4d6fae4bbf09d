package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ardnew/interp/log"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID returns the ID assigned to the request carried by ctx, or ""
// outside of a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}

// requestID assigns each request an ID: the client's X-Request-Id if it is
// a UUID, otherwise a new random UUID. The ID is echoed in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if u, err := uuid.Parse(id); err == nil {
			id = u.String()
		} else {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.InfoContext(r.Context(), "request completed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", ww.Status()),
					slog.Int("size", ww.BytesWritten()),
					slog.Duration("duration", time.Since(start)),
					slog.String("request_id", RequestID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func recoverer(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}

				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					slog.String("panic", fmt.Sprint(rvr)),
					slog.String("stack", string(debug.Stack())),
					slog.String("request_id", RequestID(r.Context())),
				)

				respondWithJSON(w, http.StatusInternalServerError, errorResponse{
					Error:     "internal error",
					RequestID: RequestID(r.Context()),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
