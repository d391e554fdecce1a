package ccfeatures

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// RunFunc executes a probe binary and returns its exit status. A non-nil
// error means the binary could not be executed at all; both outcomes
// count as probe failure.
type RunFunc func(exePath string) (int, error)

// Prober runs compile-link-execute probes against a toolchain and
// accumulates the configuration that successful probes contribute.
// It is not safe for concurrent use; probes run strictly one at a time.
type Prober struct {
	tc  Toolchain
	cfg *Config
	dir string
	seq int
	run RunFunc
	log logrus.FieldLogger
}

// Option configures a [Prober].
type Option func(*Prober)

// WithToolchain sets the toolchain used for compiling and linking.
// Without it, [New] builds a [SystemToolchain] from the host compiler.
func WithToolchain(tc Toolchain) Option {
	return func(p *Prober) {
		p.tc = tc
	}
}

// WithWorkDir sets the directory probe artifacts are written to.
// Defaults to the current directory.
func WithWorkDir(dir string) Option {
	return func(p *Prober) {
		p.dir = dir
	}
}

// WithConfig seeds the prober with an existing accumulated configuration.
func WithConfig(cfg *Config) Option {
	return func(p *Prober) {
		p.cfg = cfg
	}
}

// WithLogger sets the logger for probe verdicts and toolchain command
// lines (logged at debug level).
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Prober) {
		p.log = log
	}
}

// WithRunFunc overrides how probe binaries are executed.
// This is primarily for testing; production code executes the binary
// directly as a subprocess.
func WithRunFunc(run RunFunc) Option {
	return func(p *Prober) {
		p.run = run
	}
}

// New creates a Prober. It fails only when no toolchain was supplied and
// no host compiler can be found.
func New(opts ...Option) (*Prober, error) {
	p := &Prober{
		cfg: &Config{},
		dir: ".",
		run: runExecutable,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = discardLogger()
	}
	if p.cfg == nil {
		p.cfg = &Config{}
	}
	if p.tc == nil {
		tc, err := NewSystemToolchain(p.log)
		if err != nil {
			return nil, err
		}
		p.tc = tc
	}
	return p, nil
}

// Config returns the accumulated configuration. Its read accessors hand
// out copies; the only way it grows is through successful probes.
func (p *Prober) Config() *Config {
	return p.cfg
}

// IncludeDirs returns a copy of the accumulated include directories.
func (p *Prober) IncludeDirs() []string {
	return p.cfg.IncludeDirs()
}

// CompilerFlags returns a copy of the accumulated compiler flags.
func (p *Prober) CompilerFlags() []string {
	return p.cfg.CompilerFlags()
}

// LinkerFlags returns a copy of the accumulated linker flags.
func (p *Prober) LinkerFlags() []string {
	return p.cfg.LinkerFlags()
}

// TryRun writes the request's source to a fresh temp file, compiles,
// links, and executes it, and reports whether the program exited with
// status zero. Toolchain and execution failures are the expected
// "feature absent" outcome and surface as (false, nil); the error is
// reserved for environment problems such as being unable to write the
// source file. All intermediate artifacts are removed on every path.
//
// On success, a non-empty [Request.Define] is recorded as a -D compiler
// flag for all subsequent probes and the final build.
func (p *Prober) TryRun(req Request) (bool, error) {
	src := p.nextSourcePath()
	if err := os.WriteFile(src, []byte(req.Source), 0o644); err != nil {
		os.Remove(src)
		return false, fmt.Errorf("write probe source: %w", err)
	}

	obj, err := p.tc.Compile(src, merged(p.cfg.includeDirs, req.IncludeDirs), merged(p.cfg.compilerFlags, req.CompilerFlags))
	os.Remove(src)
	if err != nil {
		p.log.WithError(err).WithField("source", src).Debug("probe compile failed")
		return false, nil
	}

	exe, err := p.tc.LinkExecutable([]string{obj}, merged(p.cfg.linkerFlags, req.LinkerFlags))
	os.Remove(obj)
	if err != nil {
		p.log.WithError(err).WithField("object", obj).Debug("probe link failed")
		return false, nil
	}

	status, err := p.run(exe)
	os.Remove(exe)
	if err != nil {
		p.log.WithError(err).WithField("executable", exe).Debug("probe run failed")
		return false, nil
	}
	if status != 0 {
		p.log.WithField("status", status).Debug("probe exited non-zero")
		return false, nil
	}

	if req.Define != "" {
		p.cfg.addCompilerFlags("-D" + req.Define)
	}
	return true, nil
}

// Check is the asserting variant of [Prober.TryRun]: it returns nil when the
// probe succeeds and a *[ConfigError] carrying [Request.Diag] when the
// feature is absent. Environment errors pass through wrapped.
func (p *Prober) Check(req Request) error {
	ok, err := p.TryRun(req)
	if err != nil {
		return &ConfigError{Diag: req.Diag, Err: err}
	}
	if !ok {
		return &ConfigError{Diag: req.Diag}
	}
	return nil
}

// nextSourcePath returns a fresh probe source path. Names come from a
// per-Prober sequence counter, so two probers sharing a working
// directory can collide; single-process, single-directory usage is the
// supported pattern.
func (p *Prober) nextSourcePath() string {
	p.seq++
	return filepath.Join(p.dir, fmt.Sprintf("conftest%d.c", p.seq))
}

// runExecutable runs a probe binary and reports its exit status.
func runExecutable(exePath string) (int, error) {
	abs, err := filepath.Abs(exePath)
	if err != nil {
		return -1, err
	}
	cmd := exec.Command(abs)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}
