// Package ccfeatures provides configure-time feature detection against
// the host C toolchain.
//
// Given a source snippet, it compiles, links, and executes it to decide
// whether a header, library, or OS feature is available, and accumulates
// the include directories, compiler flags, and linker flags that
// successful probes contribute. The accumulated configuration feeds the
// surrounding build system; it is the Go analog of autoconf's AC_TRY_RUN
// and mkmf's try_run family.
//
// # API Model
//
// ccfeatures exposes two call families per operation:
//   - TryX for boolean feature detection ("is it there?")
//   - CheckX for asserting validation, failing with a *[ConfigError]
//     that carries an optional caller-supplied diagnostic
//
// Feature absence is an expected outcome, never an error: toolchain and
// probe-program failures surface as false. The error channel is reserved
// for environment problems (no compiler, cannot write the temp source).
//
// # Quick Check
//
// Abort configuration unless a feature is present:
//
//	p, err := ccfeatures.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = p.Check(ccfeatures.Request{
//	    Source: "#include <pthread.h>\nint main(void) { return 0; }",
//	    Define: "HAVE_PTHREAD_H",
//	    Diag:   "pthread.h is required",
//	})
//	if err != nil {
//	    log.Fatal(err) // "OS unsupported - pthread.h is required"
//	}
//
// # Candidate Search
//
// Try alternatives in order and keep the first that works:
//
//	ok, err := p.TryLibraries(src, []string{"", "socket nsl"})
//
// tries linking with no extra libraries first, then with -lsocket -lnsl;
// the winning candidate's flags join the accumulated linker flags for
// every later probe and the final build.
//
// # State Model
//
// The accumulated [Config] only grows, and only through successful
// probes. Read accessors return defensive copies. Every probe cleans up
// its temp source, object, and executable on all paths, so nothing
// leaks between probes except through the Config.
//
// Probing is strictly sequential and blocking, with no timeout: a probe
// program that hangs will hang the configure step. Probe file names come
// from a per-[Prober] counter, so two probers sharing a working
// directory is unsupported.
package ccfeatures
