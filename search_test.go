package ccfeatures

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestTryLibraries(t *testing.T) {
	const src = "int main(void) { return 0; }"

	t.Run("first working candidate wins", func(t *testing.T) {
		// Linking succeeds only with both -lsocket and -lnsl, mimicking
		// a SysV host where socket functions live outside libc.
		tc := &fakeToolchain{failLink: func(call linkCall) bool {
			return !slices.Contains(call.flags, "-lsocket") || !slices.Contains(call.flags, "-lnsl")
		}}
		p := newTestProber(t, tc, 0)

		ok, err := p.TryLibraries(src, []string{"", "socket nsl"})
		if err != nil {
			t.Fatalf("TryLibraries() error = %v", err)
		}
		if !ok {
			t.Fatal("TryLibraries() = false, want true")
		}

		want := []string{"-lsocket", "-lnsl"}
		if got := p.LinkerFlags(); !slices.Equal(got, want) {
			t.Errorf("LinkerFlags() = %v, want %v", got, want)
		}

		// A later probe links with the discovered flags already in place.
		if ok, err := p.TryRun(Request{Source: src}); err != nil || !ok {
			t.Fatalf("TryRun() after search = %v, %v, want true, nil", ok, err)
		}
		last := tc.links[len(tc.links)-1]
		if !slices.Equal(last.flags, want) {
			t.Errorf("subsequent link flags = %v, want %v", last.flags, want)
		}
	})

	t.Run("empty candidate means no extra libraries", func(t *testing.T) {
		tc := &fakeToolchain{}
		p := newTestProber(t, tc, 0)

		ok, err := p.TryLibraries(src, []string{"", "socket nsl"})
		if err != nil || !ok {
			t.Fatalf("TryLibraries() = %v, %v, want true, nil", ok, err)
		}
		if got := p.LinkerFlags(); len(got) != 0 {
			t.Errorf("LinkerFlags() = %v, want empty", got)
		}
		if len(tc.links) != 1 {
			t.Errorf("got %d link calls, want 1 (search stops at first success)", len(tc.links))
		}
	})

	t.Run("all candidates fail", func(t *testing.T) {
		tc := &fakeToolchain{failLink: func(linkCall) bool { return true }}
		p := newTestProber(t, tc, 0)

		ok, err := p.TryLibraries(src, []string{"", "socket", "socket nsl"})
		if err != nil {
			t.Fatalf("TryLibraries() error = %v", err)
		}
		if ok {
			t.Fatal("TryLibraries() = true, want false")
		}
		if got := p.LinkerFlags(); len(got) != 0 {
			t.Errorf("LinkerFlags() = %v, want empty after failed search", got)
		}
		if len(tc.links) != 3 {
			t.Errorf("got %d link calls, want 3 (every candidate tried once)", len(tc.links))
		}
		assertNoArtifacts(t, p)
	})

	t.Run("no candidates", func(t *testing.T) {
		p := newTestProber(t, &fakeToolchain{}, 0)

		ok, err := p.TryLibraries(src, nil)
		if err != nil {
			t.Fatalf("TryLibraries() error = %v", err)
		}
		if ok {
			t.Fatal("TryLibraries() = true, want false")
		}
	})
}

func TestTryIncludeDirs(t *testing.T) {
	const src = "#include <thing.h>\nint main(void) { return 0; }"

	t.Run("first working candidate wins", func(t *testing.T) {
		tc := &fakeToolchain{failCompile: func(call compileCall) bool {
			return !slices.Contains(call.includeDirs, "/opt/thing/include")
		}}
		p := newTestProber(t, tc, 0)

		ok, err := p.TryIncludeDirs(src, [][]string{nil, {"/usr/thing/include"}, {"/opt/thing/include"}})
		if err != nil {
			t.Fatalf("TryIncludeDirs() error = %v", err)
		}
		if !ok {
			t.Fatal("TryIncludeDirs() = false, want true")
		}

		want := []string{"/opt/thing/include"}
		if got := p.IncludeDirs(); !slices.Equal(got, want) {
			t.Errorf("IncludeDirs() = %v, want %v", got, want)
		}
	})

	t.Run("winner appended after prior state", func(t *testing.T) {
		tc := &fakeToolchain{failCompile: func(call compileCall) bool {
			return !slices.Contains(call.includeDirs, "/opt/thing/include")
		}}
		cfg := NewConfig([]string{"/already/there"}, nil, nil)
		p := newTestProber(t, tc, 0, WithConfig(cfg))

		ok, err := p.TryIncludeDirs(src, [][]string{{"/opt/thing/include"}})
		if err != nil || !ok {
			t.Fatalf("TryIncludeDirs() = %v, %v, want true, nil", ok, err)
		}

		want := []string{"/already/there", "/opt/thing/include"}
		if got := p.IncludeDirs(); !slices.Equal(got, want) {
			t.Errorf("IncludeDirs() = %v, want %v", got, want)
		}
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		tc := &fakeToolchain{}
		p := newTestProber(t, tc, 0)

		if ok, err := p.TryIncludeDirs(src, [][]string{{"/opt/thing/include"}}); err != nil || !ok {
			t.Fatalf("TryIncludeDirs() = %v, %v, want true, nil", ok, err)
		}

		got := p.IncludeDirs()
		got[0] = "/mutated"
		if again := p.IncludeDirs(); again[0] != "/opt/thing/include" {
			t.Errorf("IncludeDirs() = %v after caller mutation, internal state leaked", again)
		}
	})

	t.Run("all candidates fail", func(t *testing.T) {
		tc := &fakeToolchain{failCompile: func(compileCall) bool { return true }}
		p := newTestProber(t, tc, 0)

		ok, err := p.TryIncludeDirs(src, [][]string{nil, {"/a"}, {"/b"}})
		if err != nil {
			t.Fatalf("TryIncludeDirs() error = %v", err)
		}
		if ok {
			t.Fatal("TryIncludeDirs() = true, want false")
		}
		if got := p.IncludeDirs(); len(got) != 0 {
			t.Errorf("IncludeDirs() = %v, want empty after failed search", got)
		}
		assertNoArtifacts(t, p)
	})
}

func TestCheckLibraries(t *testing.T) {
	const src = "int main(void) { return 0; }"

	t.Run("failure carries diag", func(t *testing.T) {
		tc := &fakeToolchain{failLink: func(linkCall) bool { return true }}
		p := newTestProber(t, tc, 0)

		err := p.CheckLibraries(src, []string{"socket"}, "socket library is required")
		if err == nil {
			t.Fatal("CheckLibraries() expected error")
		}
		if got, want := err.Error(), "OS unsupported - socket library is required"; got != want {
			t.Errorf("error = %q, want %q", got, want)
		}
	})

	t.Run("success", func(t *testing.T) {
		p := newTestProber(t, &fakeToolchain{}, 0)

		if err := p.CheckLibraries(src, []string{""}, "unused"); err != nil {
			t.Fatalf("CheckLibraries() error = %v", err)
		}
	})
}

func TestCheckIncludeDirs_Failure(t *testing.T) {
	tc := &fakeToolchain{failCompile: func(compileCall) bool { return true }}
	p := newTestProber(t, tc, 0)

	err := p.CheckIncludeDirs("#include <thing.h>", [][]string{{"/a"}}, "thing.h is required")
	if err == nil {
		t.Fatal("CheckIncludeDirs() expected error")
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
	if !strings.HasSuffix(err.Error(), " - thing.h is required") {
		t.Errorf("error %q does not end with the diagnostic", err.Error())
	}
}

func TestLibraryFlags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "socket", []string{"-lsocket"}},
		{"multiple", "socket nsl", []string{"-lsocket", "-lnsl"}},
		{"empty", "", nil},
		{"extra whitespace", "  socket   nsl  ", []string{"-lsocket", "-lnsl"}},
		{"quoted", `"odd name"`, []string{"-lodd name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := libraryFlags(tt.input)
			if err != nil {
				t.Fatalf("libraryFlags(%q) error = %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("libraryFlags(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("libraryFlags(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
