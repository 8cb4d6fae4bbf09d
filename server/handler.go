package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/ardnew/interp/lang"
)

// EvalRequest is the body of POST /v1/eval.
type EvalRequest struct {
	Expression string         `json:"expression"     validate:"required,max=65536"`
	Vars       map[string]any `json:"vars,omitempty" validate:"omitempty,max=256"`
}

// EvalResponse is the body of a successful POST /v1/eval.
type EvalResponse struct {
	Result any `json:"result"`
}

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	Template string         `json:"template"       validate:"required,max=65536"`
	Vars     map[string]any `json:"vars,omitempty" validate:"omitempty,max=256"`
}

// RenderResponse is the body of a successful POST /v1/render.
type RenderResponse struct {
	Output string `json:"output"`
}

type errorResponse struct {
	Error     string   `json:"error"`
	Details   []string `json:"details,omitempty"`
	Position  *int     `json:"position,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) eval(w http.ResponseWriter, r *http.Request) {
	var req EvalRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx := r.Context()

	x, err := lang.Compile(ctx, req.Expression, s.opts.engine...)
	if err != nil {
		s.respondWithEngineError(w, r, err)

		return
	}

	v, err := x.Evaluate(ctx, s.scope(req.Vars), s.opts.engine...)
	if err != nil {
		s.respondWithEngineError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, EvalResponse{Result: v})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := lang.Interpolate(r.Context(), req.Template, s.scope(req.Vars), s.opts.engine...)
	if err != nil {
		s.respondWithEngineError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, RenderResponse{Output: out})
}

// scope layers the request variables over the server's.
func (s *Server) scope(overlay map[string]any) lang.Vars {
	if len(overlay) == 0 {
		return s.vars
	}

	vars := make(lang.Vars, len(s.vars)+len(overlay))
	maps.Copy(vars, s.vars)

	for name, v := range overlay {
		vars[name] = lang.FromNative(fromJSON(v))
	}

	return vars
}

// fromJSON converts the json.Number values of decoded JSON to int where
// they are integral and to float64 otherwise.
func fromJSON(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 0); err == nil {
			return int(i)
		}

		if f, err := v.Float64(); err == nil {
			return f
		}

		return v.String()

	case map[string]any:
		for k, val := range v {
			v[k] = fromJSON(val)
		}

		return v

	case []any:
		for i, val := range v {
			v[i] = fromJSON(val)
		}

		return v

	default:
		return v
	}
}

// decode reads and validates the JSON request body into dst. It responds
// with 400 and returns false if the body is invalid.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	if err := dec.Decode(dst); err != nil {
		msg := "invalid request body"

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			msg = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
		}

		s.respondWithError(w, r, http.StatusBadRequest, msg)

		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			s.respondWithError(w, r, http.StatusBadRequest, err.Error())

			return false
		}

		details := make([]string, len(verrs))
		for i, fe := range verrs {
			details[i] = validationMessage(fe)
		}

		s.respond(w, r, http.StatusBadRequest, errorResponse{
			Error:     "invalid request",
			Details:   details,
			RequestID: RequestID(r.Context()),
		})

		return false
	}

	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s exceeds the maximum of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}

// respondWithEngineError maps an engine error to a status code: syntax
// errors are the client's (400), interpolation errors are unprocessable
// with the given variables (422), anything else is ours (500).
func (s *Server) respondWithEngineError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{
		Error:     err.Error(),
		RequestID: RequestID(r.Context()),
	}

	status := http.StatusInternalServerError

	switch {
	case lang.IsSyntaxError(err):
		status = http.StatusBadRequest

		var le *lang.Error
		if errors.As(err, &le) {
			if pos, ok := le.Position(); ok {
				resp.Position = &pos
			}
		}

	case lang.IsInterpolationError(err):
		status = http.StatusUnprocessableEntity

	default:
		resp.Error = "internal error"
	}

	s.opts.logger.DebugContext(r.Context(), "request failed",
		slog.Int("status", status),
		slog.Any("error", err),
		slog.String("request_id", resp.RequestID),
	)

	s.respond(w, r, status, resp)
}

func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.respond(w, r, status, errorResponse{
		Error:     msg,
		RequestID: RequestID(r.Context()),
	})
}

// respond encodes payload before writing any of the response, so that an
// unencodable result becomes a 500 instead of a truncated body.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, payload any) {
	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		s.opts.logger.ErrorContext(r.Context(), "encode response",
			slog.Any("error", err),
			slog.String("request_id", RequestID(r.Context())),
		)

		respondWithJSON(w, http.StatusInternalServerError, errorResponse{
			Error:     "result cannot be encoded as JSON",
			RequestID: RequestID(r.Context()),
		})

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
