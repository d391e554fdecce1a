package ccfeatures

// Request describes a single probe: a source snippet plus the extra
// configuration to try it with. The zero value of every optional field
// means "nothing extra".
type Request struct {
	// Source is the program text to compile, link, and execute.
	Source string
	// IncludeDirs are extra include directories for this probe only,
	// tried after the accumulated ones.
	IncludeDirs []string
	// CompilerFlags are extra compiler flags for this probe only.
	CompilerFlags []string
	// LinkerFlags are extra linker flags for this probe only.
	LinkerFlags []string
	// Define, when non-empty, is a preprocessor symbol appended to the
	// accumulated compiler flags (as -D<Define>) once the probe succeeds.
	Define string
	// Diag is an optional diagnostic appended to the error message of the
	// asserting call variants when the probe fails.
	Diag string
}

// ConfigError represents a failed configuration assertion: a feature the
// build requires is not available on this host.
type ConfigError struct {
	// Diag is the optional diagnostic supplied by the caller.
	Diag string
	// Err is the underlying environment error, if any.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Diag != "" {
		return "OS unsupported - " + e.Diag
	}
	return "OS unsupported"
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
