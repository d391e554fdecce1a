package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/google/shlex"
	"github.com/leodido/ccfeatures"
	"github.com/leodido/structcli"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags (see .goreleaser.yaml).
// When built without ldflags (e.g., plain `go build`), these remain
// at their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	root := &cobra.Command{
		Use:   "ccfeatures",
		Short: "Configure-time feature detection for the host C toolchain",
		Long: `ccfeatures compiles, links, and runs small C programs to detect
whether headers, libraries, and OS features are available on this host.

Use it from configure scripts to discover the include directories,
compiler flags, and linker flags a build needs.`,
		SilenceUsage: true,
	}

	root.AddCommand(tryCmd())
	root.AddCommand(findLibraryCmd())
	root.AddCommand(findIncludeCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// outputFormat selects how results are rendered.
type outputFormat enumflag.Flag

const (
	outputText outputFormat = iota
	outputJSON
)

var outputFormatIDs = map[outputFormat][]string{
	outputText: {"text"},
	outputJSON: {"json"},
}

func defineOutputFlag(fieldValue reflect.Value, descr string) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*outputFormat)
	*fieldPtr = outputText
	return enumflag.New(fieldPtr, "format", outputFormatIDs, enumflag.EnumCaseInsensitive), descr
}

func decodeOutputFlag(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	return parseOutputFormat(s)
}

func parseOutputFormat(input string) (outputFormat, error) {
	var format outputFormat
	value := enumflag.New(&format, "format", outputFormatIDs, enumflag.EnumCaseInsensitive)
	if err := value.Set(strings.TrimSpace(input)); err != nil {
		return outputText, fmt.Errorf("unknown output format: %q (available: text, json)", input)
	}

	return format, nil
}

// TryOptions defines flags for the try subcommand.
type TryOptions struct {
	IncludeDirs string       `flag:"include-dirs" flagshort:"I" flagdescr:"Extra include directories (space-separated)"`
	CFlags      string       `flag:"cflags" flagdescr:"Extra compiler flags (space-separated)"`
	LDFlags     string       `flag:"ldflags" flagdescr:"Extra linker flags (space-separated)"`
	Define      string       `flag:"define" flagshort:"d" flagdescr:"Preprocessor symbol to record on success"`
	WorkDir     string       `flag:"workdir" flagdescr:"Directory for probe artifacts (default .)"`
	Verbose     bool         `flag:"verbose" flagshort:"v" flagdescr:"Log toolchain command lines"`
	Output      outputFormat `flag:"output" flagshort:"o" flagdescr:"Output format (text, json)" flagcustom:"true"`
}

func (o *TryOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *TryOptions) DefineOutput(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineOutputFlag(fieldValue, descr)
}

func (o *TryOptions) DecodeOutput(input any) (any, error) {
	return decodeOutputFlag(input)
}

func tryCmd() *cobra.Command {
	opts := &TryOptions{}

	cmd := &cobra.Command{
		Use:   "try <file|->",
		Short: "Compile, link, and run a source snippet",
		Long: `Compile, link, and run a source snippet against the host toolchain.
Reads the snippet from the given file, or from stdin when the argument is "-".
Exits with code 0 if the program compiles, links, and exits 0, and 1 otherwise.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			req := ccfeatures.Request{Source: source, Define: opts.Define}
			if req.IncludeDirs, err = splitList(opts.IncludeDirs); err != nil {
				return err
			}
			if req.CompilerFlags, err = splitList(opts.CFlags); err != nil {
				return err
			}
			if req.LinkerFlags, err = splitList(opts.LDFlags); err != nil {
				return err
			}

			p, err := newProber(opts.WorkDir, opts.Verbose)
			if err != nil {
				return err
			}

			ok, err := p.TryRun(req)
			if err != nil {
				return err
			}

			if opts.Output == outputJSON {
				if err := printJSON(probeReport(ok, p)); err != nil {
					return err
				}
			} else if ok {
				fmt.Println("yes")
			} else {
				fmt.Println("no")
			}

			if !ok {
				os.Exit(1)
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// FindLibraryOptions defines flags for the find-library subcommand.
type FindLibraryOptions struct {
	Candidates string       `flag:"candidates" flagshort:"c" flagdescr:"Comma-separated candidate library sets, each a space-separated list of names (an empty set means no extra libraries)" flagrequired:"true"`
	Diag       string       `flag:"diag" flagdescr:"Diagnostic appended to the failure message"`
	WorkDir    string       `flag:"workdir" flagdescr:"Directory for probe artifacts (default .)"`
	Verbose    bool         `flag:"verbose" flagshort:"v" flagdescr:"Log toolchain command lines"`
	Output     outputFormat `flag:"output" flagshort:"o" flagdescr:"Output format (text, json)" flagcustom:"true"`
}

func (o *FindLibraryOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *FindLibraryOptions) DefineOutput(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineOutputFlag(fieldValue, descr)
}

func (o *FindLibraryOptions) DecodeOutput(input any) (any, error) {
	return decodeOutputFlag(input)
}

func findLibraryCmd() *cobra.Command {
	opts := &FindLibraryOptions{}

	cmd := &cobra.Command{
		Use:   "find-library <file|->",
		Short: "Find the first candidate library set the snippet links and runs with",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			p, err := newProber(opts.WorkDir, opts.Verbose)
			if err != nil {
				return err
			}

			err = p.CheckLibraries(source, parseCandidates(opts.Candidates), opts.Diag)
			return report(err, opts.Output, p)
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// FindIncludeOptions defines flags for the find-include subcommand.
type FindIncludeOptions struct {
	Candidates string       `flag:"candidates" flagshort:"c" flagdescr:"Comma-separated candidate directory sets, each a space-separated list of directories (an empty set means no extra directories)" flagrequired:"true"`
	Diag       string       `flag:"diag" flagdescr:"Diagnostic appended to the failure message"`
	WorkDir    string       `flag:"workdir" flagdescr:"Directory for probe artifacts (default .)"`
	Verbose    bool         `flag:"verbose" flagshort:"v" flagdescr:"Log toolchain command lines"`
	Output     outputFormat `flag:"output" flagshort:"o" flagdescr:"Output format (text, json)" flagcustom:"true"`
}

func (o *FindIncludeOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *FindIncludeOptions) DefineOutput(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineOutputFlag(fieldValue, descr)
}

func (o *FindIncludeOptions) DecodeOutput(input any) (any, error) {
	return decodeOutputFlag(input)
}

func findIncludeCmd() *cobra.Command {
	opts := &FindIncludeOptions{}

	cmd := &cobra.Command{
		Use:   "find-include <file|->",
		Short: "Find the first candidate include-directory set the snippet compiles with",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			candidates, err := parseDirCandidates(opts.Candidates)
			if err != nil {
				return err
			}

			p, err := newProber(opts.WorkDir, opts.Verbose)
			if err != nil {
				return err
			}

			err = p.CheckIncludeDirs(source, candidates, opts.Diag)
			return report(err, opts.Output, p)
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool, compiler, and host information",
		RunE: func(c *cobra.Command, args []string) error {
			if version != "" {
				fmt.Printf("ccfeatures %s", version)
				if commit != "" {
					fmt.Printf(" (%s)", commit)
				}
				if date != "" {
					fmt.Printf(" built %s", date)
				}
				fmt.Println()
			} else {
				fmt.Println("ccfeatures (dev)")
			}

			if tc, err := ccfeatures.NewSystemToolchain(nil); err != nil {
				fmt.Printf("Compiler: (none: %v)\n", err)
			} else {
				fmt.Printf("Compiler: %s\n", tc.Compiler())
			}
			if kernel := ccfeatures.HostKernel(); kernel != "" {
				fmt.Printf("Kernel: %s\n", kernel)
			}
			return nil
		},
	}
}

// report renders the outcome of an asserting search. Feature absence
// prints a FAIL line and exits 1; environment errors propagate.
func report(err error, format outputFormat, p *ccfeatures.Prober) error {
	if err != nil {
		var ce *ccfeatures.ConfigError
		if errors.As(err, &ce) && ce.Err == nil {
			if format == outputJSON {
				if jerr := printJSON(map[string]any{"ok": false, "reason": ce.Error()}); jerr != nil {
					return jerr
				}
			} else {
				fmt.Fprintf(os.Stderr, "FAIL: %s\n", ce.Error())
			}
			os.Exit(1)
		}
		return err
	}

	if format == outputJSON {
		return printJSON(probeReport(true, p))
	}
	fmt.Print(p.Config())
	return nil
}

func probeReport(ok bool, p *ccfeatures.Prober) map[string]any {
	return map[string]any{
		"ok":             ok,
		"include_dirs":   p.IncludeDirs(),
		"compiler_flags": p.CompilerFlags(),
		"linker_flags":   p.LinkerFlags(),
	}
}

// newProber builds a Prober for CLI use in the given working directory.
func newProber(workDir string, verbose bool) (*ccfeatures.Prober, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	opts := []ccfeatures.Option{ccfeatures.WithLogger(log)}
	if workDir != "" {
		opts = append(opts, ccfeatures.WithWorkDir(workDir))
	}
	return ccfeatures.New(opts...)
}

// readSource reads the probe source from a file, or from stdin when the
// argument is "-".
func readSource(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read source from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

// parseCandidates splits a comma-separated candidate list, trimming
// surrounding whitespace. Empty entries survive: an empty candidate
// means "try with nothing extra".
func parseCandidates(input string) []string {
	parts := strings.Split(input, ",")
	candidates := make([]string, 0, len(parts))
	for _, part := range parts {
		candidates = append(candidates, strings.TrimSpace(part))
	}
	return candidates
}

// parseDirCandidates parses comma-separated candidates into directory
// sets, splitting each candidate on spaces with shell-style quoting.
func parseDirCandidates(input string) ([][]string, error) {
	parts := parseCandidates(input)
	candidates := make([][]string, 0, len(parts))
	for _, part := range parts {
		dirs, err := shlex.Split(part)
		if err != nil {
			return nil, fmt.Errorf("bad candidate %q: %w", part, err)
		}
		candidates = append(candidates, dirs)
	}
	return candidates, nil
}

// splitList splits a space-separated flag value with shell-style quoting.
func splitList(input string) ([]string, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	return shlex.Split(input)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
