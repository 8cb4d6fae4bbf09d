package server

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/ardnew/interp/lang"
)

// Server serves the HTTP API. It is an [http.Handler] and is safe for
// concurrent use as long as its variables are not modified.
type Server struct {
	router   chi.Router
	vars     lang.Vars
	opts     options
	validate *validator.Validate
}

// New returns a Server evaluating requests against vars.
func New(vars lang.Vars, opts ...Option) *Server {
	s := &Server{
		vars:     vars,
		opts:     makeOptions(opts...),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	// Report fields by their JSON names.
	s.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	s.router = s.routes()

	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.opts.logger))
	r.Use(recoverer(s.opts.logger))

	if len(s.opts.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(middleware.RequestSize(s.opts.maxBodyBytes))

		r.Post("/eval", s.eval)
		r.Post("/render", s.render)
	})

	if s.opts.profiler {
		r.Mount("/debug", middleware.Profiler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondWithError(w, r, http.StatusNotFound, "not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondWithError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
