package ccfeatures

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoCompiler is returned when no C compiler can be found on the host.
var ErrNoCompiler = errors.New("no C compiler found")

// Toolchain compiles and links probe programs. Implementations report
// failure through the error; callers never inspect diagnostics, only
// whether an output artifact was produced.
type Toolchain interface {
	// Compile compiles a single source file and returns the path of the
	// produced object file.
	Compile(sourcePath string, includeDirs, flags []string) (string, error)
	// LinkExecutable links object files into an executable and returns
	// its path.
	LinkExecutable(objects, flags []string) (string, error)
}

// SystemToolchain drives the host C compiler (cc, gcc, or clang) found
// on PATH, or whatever $CC names.
type SystemToolchain struct {
	cc  string
	log logrus.FieldLogger
}

// NewSystemToolchain locates the host C compiler and returns a toolchain
// wrapping it. It returns [ErrNoCompiler] when none is found.
func NewSystemToolchain(log logrus.FieldLogger) (*SystemToolchain, error) {
	cc, err := findCompiler()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = discardLogger()
	}
	return &SystemToolchain{cc: cc, log: log}, nil
}

// Compiler returns the path of the compiler driving this toolchain.
func (t *SystemToolchain) Compiler() string {
	return t.cc
}

// Compile compiles sourcePath with -c, placing the object file next to
// the source. Include directories become -I arguments ahead of flags.
func (t *SystemToolchain) Compile(sourcePath string, includeDirs, flags []string) (string, error) {
	obj := objectPath(sourcePath)
	args := compileArgs(obj, sourcePath, includeDirs, flags)
	if err := t.invoke(args); err != nil {
		return "", err
	}
	if _, err := os.Stat(obj); err != nil {
		return "", fmt.Errorf("compiler produced no output: %w", err)
	}
	return obj, nil
}

// LinkExecutable links objects into an executable named after the first
// object file.
func (t *SystemToolchain) LinkExecutable(objects, flags []string) (string, error) {
	if len(objects) == 0 {
		return "", errors.New("nothing to link")
	}
	exe := executablePath(objects[0])
	args := linkArgs(exe, objects, flags)
	if err := t.invoke(args); err != nil {
		return "", err
	}
	if _, err := os.Stat(exe); err != nil {
		return "", fmt.Errorf("linker produced no output: %w", err)
	}
	return exe, nil
}

// invoke runs the compiler with the given arguments, discarding its
// diagnostics. Only the exit status matters.
func (t *SystemToolchain) invoke(args []string) error {
	t.log.WithField("cc", t.cc).Debug(strings.Join(append([]string{t.cc}, args...), " "))
	cmd := exec.Command(t.cc, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

// findCompiler returns the host C compiler: $CC if set, otherwise the
// first of cc, gcc, clang found on PATH.
func findCompiler() (string, error) {
	if cc := os.Getenv("CC"); cc != "" {
		if path, err := exec.LookPath(cc); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("%w: $CC=%q not usable", ErrNoCompiler, cc)
	}
	for _, name := range []string{"cc", "gcc", "clang"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrNoCompiler
}

func objectPath(sourcePath string) string {
	return strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".o"
}

func executablePath(objectPath string) string {
	return strings.TrimSuffix(objectPath, filepath.Ext(objectPath)) + exeSuffix
}

func compileArgs(obj, src string, includeDirs, flags []string) []string {
	args := make([]string, 0, len(includeDirs)+len(flags)+4)
	for _, dir := range includeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, flags...)
	args = append(args, "-c", "-o", obj, src)
	return args
}

func linkArgs(exe string, objects, flags []string) []string {
	args := make([]string, 0, len(objects)+len(flags)+2)
	args = append(args, "-o", exe)
	args = append(args, objects...)
	args = append(args, flags...)
	return args
}

// discardLogger returns a logger that drops everything. Callers who want
// toolchain command lines pass their own via [WithLogger].
func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
