// Package server exposes the expression engine over HTTP.
//
// Routes:
//
//	POST /v1/eval    {"expression": "...", "vars": {...}}  -> {"result": <value>}
//	POST /v1/render  {"template": "...", "vars": {...}}    -> {"output": "..."}
//	GET  /healthz                                          -> {"status": "ok"}
//
// The optional "vars" mapping is layered over the server's variables for a
// single request. Invalid requests and syntax errors are answered with
// 400, interpolation errors with 422 and anything else with 500. Every
// response carries an X-Request-Id header, which error bodies repeat as
// "request_id".
package server
