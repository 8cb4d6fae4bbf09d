package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/interp/lang"
	"github.com/ardnew/interp/log"
)

func testVars() lang.Vars {
	return lang.Vars{
		"page": map[string]any{"title": "Home", "tags": []any{"a", "b"}},
		"site": lang.Members{
			Name:       "Site",
			Properties: map[string]any{"name": "Example"},
			Methods: map[string]lang.Func{
				"upper": func(args ...any) (any, error) {
					s, _ := args[0].(string)

					return strings.ToUpper(s), nil
				},
			},
		},
		"fn": lang.Func(func(...any) (any, error) { return nil, nil }),
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var got map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got), rec.Body.String())
	}

	return rec, got
}

func TestServer_Health(t *testing.T) {
	rec, got := do(t, New(nil), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestServer_Eval(t *testing.T) {
	s := New(testVars())

	tests := []struct {
		name   string
		body   string
		status int
		result any
	}{
		{"property", `{"expression": "page.title"}`, http.StatusOK, "Home"},
		{"index", `{"expression": "page.tags[1]"}`, http.StatusOK, "b"},
		{"method", `{"expression": "site.upper(page.title)"}`, http.StatusOK, "HOME"},
		{"list", `{"expression": "[1, 2.5, null]"}`, http.StatusOK, []any{1.0, 2.5, nil}},
		{"assoc", `{"expression": "[\"k\" => true]"}`, http.StatusOK, map[string]any{"k": true}},
		{"object", `{"expression": "site"}`, http.StatusOK, map[string]any{"name": "Example"}},
		{"overlay", `{"expression": "n", "vars": {"n": 3}}`, http.StatusOK, 3.0},
		{"overlay shadows", `{"expression": "page", "vars": {"page": "p"}}`, http.StatusOK, "p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, got := do(t, s, http.MethodPost, "/v1/eval", tt.body)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.result, got["result"])
		})
	}
}

func TestServer_Render(t *testing.T) {
	s := New(testVars())

	rec, got := do(t, s, http.MethodPost, "/v1/render",
		`{"template": "<h1>${page.title}</h1> \\${kept}", "vars": {"x": 1}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "<h1>Home</h1> ${kept}", got["output"])
}

func TestServer_Errors(t *testing.T) {
	s := New(testVars())

	tests := []struct {
		name     string
		path     string
		body     string
		status   int
		contains string
	}{
		{"malformed json", "/v1/eval", `{"expression":`, http.StatusBadRequest, "invalid request body"},
		{"missing expression", "/v1/eval", `{}`, http.StatusBadRequest, "invalid request"},
		{"missing template", "/v1/render", `{"template": ""}`, http.StatusBadRequest, "invalid request"},
		{"syntax", "/v1/eval", `{"expression": "a b"}`, http.StatusBadRequest, "unexpected"},
		{"undefined", "/v1/eval", `{"expression": "nope"}`, http.StatusUnprocessableEntity, "undefined"},
		{"render undefined", "/v1/render", `{"template": "${nope}"}`, http.StatusUnprocessableEntity, "undefined"},
		{"unencodable", "/v1/eval", `{"expression": "fn"}`, http.StatusInternalServerError, "cannot be encoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, got := do(t, s, http.MethodPost, tt.path, tt.body)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, got["error"], tt.contains)
			assert.Equal(t, rec.Header().Get(requestIDHeader), got["request_id"])
		})
	}
}

func TestServer_SyntaxErrorPosition(t *testing.T) {
	rec, got := do(t, New(nil), http.MethodPost, "/v1/eval", `{"expression": "a b"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2.0, got["position"])
}

func TestServer_ValidationDetails(t *testing.T) {
	body, err := json.Marshal(EvalRequest{Expression: strings.Repeat("a", 65537)})
	require.NoError(t, err)

	rec, got := do(t, New(nil), http.MethodPost, "/v1/eval", string(body))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"expression exceeds the maximum of 65536"}, got["details"])
}

func TestServer_BodyLimit(t *testing.T) {
	s := New(nil, WithMaxBodyBytes(16))

	rec, got := do(t, s, http.MethodPost, "/v1/eval", `{"expression": "page.title"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, got["error"], "exceeds 16 bytes")
}

func TestServer_ContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/eval", strings.NewReader(`{"expression":"1"}`))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	New(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestServer_NotFound(t *testing.T) {
	rec, got := do(t, New(nil), http.MethodGet, "/v2/eval", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", got["error"])

	rec, _ = do(t, New(nil), http.MethodGet, "/v1/eval", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_RequestID(t *testing.T) {
	s := New(nil)

	rec, _ := do(t, s, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	require.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, id)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "not-a-uuid")

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(requestIDHeader))
}

func TestServer_CORS(t *testing.T) {
	s := New(nil, WithCORS("https://example.com"))

	req := httptest.NewRequest(http.MethodOptions, "/v1/eval", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = do(t, New(nil), http.MethodGet, "/healthz", "")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RequestLogging(t *testing.T) {
	var buf bytes.Buffer

	s := New(nil, WithLogger(log.Make(&buf, log.WithFormat(log.FormatJSON))))

	rec, _ := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "request completed", record["msg"])
	assert.Equal(t, "/healthz", record["path"])
	assert.Equal(t, 200.0, record["status"])
	assert.Equal(t, rec.Header().Get(requestIDHeader), record["request_id"])
}

func TestRecoverer(t *testing.T) {
	h := requestID(recoverer(log.Logger{})(http.HandlerFunc(
		func(http.ResponseWriter, *http.Request) { panic("boom") },
	)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
}
