package ccfeatures

import "slices"

// Config accumulates the build configuration discovered by successful
// probes: include directories, compiler flags, and linker flags, each an
// ordered list. Entries are only ever appended, never reordered or
// deduplicated, so the final compiler invocation sees flags in discovery
// order. A failed probe never touches it.
type Config struct {
	includeDirs   []string
	compilerFlags []string
	linkerFlags   []string
}

// NewConfig creates a Config pre-seeded with the given lists.
// The lists are copied to keep the Config isolated from the caller.
func NewConfig(includeDirs, compilerFlags, linkerFlags []string) *Config {
	return &Config{
		includeDirs:   slices.Clone(includeDirs),
		compilerFlags: slices.Clone(compilerFlags),
		linkerFlags:   slices.Clone(linkerFlags),
	}
}

// IncludeDirs returns a copy of the accumulated include directories.
// Mutating the returned slice does not affect the Config.
func (c *Config) IncludeDirs() []string {
	return slices.Clone(c.includeDirs)
}

// CompilerFlags returns a copy of the accumulated compiler flags.
func (c *Config) CompilerFlags() []string {
	return slices.Clone(c.compilerFlags)
}

// LinkerFlags returns a copy of the accumulated linker flags.
func (c *Config) LinkerFlags() []string {
	return slices.Clone(c.linkerFlags)
}

func (c *Config) addIncludeDirs(dirs ...string) {
	c.includeDirs = append(c.includeDirs, dirs...)
}

func (c *Config) addCompilerFlags(flags ...string) {
	c.compilerFlags = append(c.compilerFlags, flags...)
}

func (c *Config) addLinkerFlags(flags ...string) {
	c.linkerFlags = append(c.linkerFlags, flags...)
}

// merged returns base followed by extra as a fresh slice, leaving both
// inputs untouched. Accumulated values always sort ahead of per-probe
// extras in toolchain invocations.
func merged(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}
