// Package profile provides optional runtime profiling for the quill
// command.
//
// # Overview
//
// This package integrates [github.com/pkg/profile]. Profiling must be
// enabled at build time with the "pprof" build tag:
//
//	go build -tags pprof -o quill .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// [Stopper].
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap memory profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles", Quiet: true}
//	defer p.Start().Stop()
//
// The quill command exposes the same settings as flags:
//
//	quill run --pprof-mode cpu --pprof-dir ./profiles story.quill
//
// The default output directory is the pprof subdirectory of the user cache
// directory ($XDG_CACHE_HOME/quill/pprof on Linux).
//
// Profiles are analyzed with the go tool:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// When built with the tag, the package also imports [net/http/pprof], so a
// program that serves [net/http.DefaultServeMux] exposes /debug/pprof/.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
