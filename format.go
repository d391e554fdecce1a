package ccfeatures

import (
	"fmt"
	"strings"
)

// String returns a human-readable summary of the accumulated
// configuration.
func (c *Config) String() string {
	var b strings.Builder

	writeList(&b, "Include dirs", c.includeDirs)
	writeList(&b, "Compiler flags", c.compilerFlags)
	writeList(&b, "Linker flags", c.linkerFlags)

	return b.String()
}

func writeList(b *strings.Builder, name string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%s: (none)\n", name)
		return
	}
	fmt.Fprintf(b, "%s: %s\n", name, strings.Join(values, " "))
}
