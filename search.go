package ccfeatures

import "github.com/google/shlex"

// TryIncludeDirs tries each candidate set of include directories, in
// order, until the source probes successfully with it. The winning
// candidate's directories are appended to the accumulated configuration.
// A candidate may be empty, meaning "no extra directories". Linear scan,
// first success wins; a failed candidate is never retried.
func (p *Prober) TryIncludeDirs(source string, candidates [][]string) (bool, error) {
	for _, dirs := range candidates {
		ok, err := p.TryRun(Request{Source: source, IncludeDirs: dirs})
		if err != nil {
			return false, err
		}
		if ok {
			p.cfg.addIncludeDirs(dirs...)
			return true, nil
		}
	}
	return false, nil
}

// CheckIncludeDirs is the asserting variant of [Prober.TryIncludeDirs].
func (p *Prober) CheckIncludeDirs(source string, candidates [][]string, diag string) error {
	ok, err := p.TryIncludeDirs(source, candidates)
	if err != nil {
		return &ConfigError{Diag: diag, Err: err}
	}
	if !ok {
		return &ConfigError{Diag: diag}
	}
	return nil
}

// TryLibraries tries each candidate library set, in order, until the
// source links and runs with it. A candidate is a space-separated string
// of library names, each expanded to a -l linker flag; the empty string
// means "no extra libraries". The winning candidate's flags are appended
// to the accumulated linker flags, in order.
func (p *Prober) TryLibraries(source string, candidates []string) (bool, error) {
	for _, candidate := range candidates {
		flags, err := libraryFlags(candidate)
		if err != nil {
			return false, err
		}
		ok, err := p.TryRun(Request{Source: source, LinkerFlags: flags})
		if err != nil {
			return false, err
		}
		if ok {
			p.cfg.addLinkerFlags(flags...)
			return true, nil
		}
	}
	return false, nil
}

// CheckLibraries is the asserting variant of [Prober.TryLibraries].
func (p *Prober) CheckLibraries(source string, candidates []string, diag string) error {
	ok, err := p.TryLibraries(source, candidates)
	if err != nil {
		return &ConfigError{Diag: diag, Err: err}
	}
	if !ok {
		return &ConfigError{Diag: diag}
	}
	return nil
}

// libraryFlags expands a space-separated library-name string into -l
// linker flags. Shell-style quoting is honored, so a name containing a
// space can be quoted.
func libraryFlags(names string) ([]string, error) {
	parts, err := shlex.Split(names)
	if err != nil {
		return nil, err
	}
	flags := make([]string, 0, len(parts))
	for _, name := range parts {
		flags = append(flags, "-l"+name)
	}
	return flags, nil
}
