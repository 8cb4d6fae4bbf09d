// Package profile provides optional runtime profiling for interp.
//
// Profiling is compiled in only with the "pprof" build tag, which wires
// [github.com/pkg/profile] behind a [Profiler]. Without the tag, [Modes] is
// empty, [Enabled] is false and [Profiler.Start] returns a no-op.
//
//	p := profile.Make(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"),
//	)
//	defer p.Start().Stop()
//
// Profile files are written to the configured directory with names matching
// the mode (cpu.pprof, mem.pprof, ...). Analyze them with go tool pprof:
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// When [Enabled] is true, "interp serve" also mounts the [net/http/pprof]
// handlers under /debug so a running server can be profiled live.
package profile

// Tag is the build tag that enables profiling.
const Tag = `pprof`
