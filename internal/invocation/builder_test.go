package invocation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
)

func unitFromJSON(t *testing.T, doc string) graph.Unit {
	t.Helper()
	var u graph.Unit
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		t.Fatalf("unmarshal unit: %v", err)
	}
	return u
}

const sampleUnitJSON = `{
	"pkg_id":"foo 0.1.0 (path+file:///ws/foo)",
	"target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},
	"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":"2","strip":false,"debug_assertions":true,"overflow_checks":true,"codegen_units":16},
	"features":["b","a"],
	"mode":"build",
	"dependencies":[]
}`

func TestBuilderOrdersFlagsPerSpec(t *testing.T) {
	u := unitFromJSON(t, sampleUnitJSON)
	args := New(u).Args()

	want := []string{
		"--crate-name", "foo",
		"--edition", "2021",
		"--crate-type", "lib",
		"-C", "opt-level=0",
		"-C", "debuginfo=2",
		"-C", "lto=off",
		"-C", "panic=unwind",
		"-C", "strip=none",
		"-C", "debug-assertions=true",
		"-C", "overflow-checks=true",
		"-C", "codegen-units=16",
		"--cfg", `feature="a"`,
		"--cfg", `feature="b"`,
	}
	if len(args) != len(want) {
		t.Fatalf("arg count mismatch: got %v want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg[%d] = %q, want %q (full: %v)", i, args[i], want[i], args)
		}
	}
}

func TestBuilderAddsTestFlagForTestMode(t *testing.T) {
	doc := strings.Replace(sampleUnitJSON, `"mode":"build"`, `"mode":"test"`, 1)
	u := unitFromJSON(t, doc)
	args := New(u).Args()
	found := false
	for _, a := range args {
		if a == "--test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected --test flag in test-mode argv: %v", args)
	}
}

func TestBuilderMutationMethodsAppendInCallOrder(t *testing.T) {
	u := unitFromJSON(t, sampleUnitJSON)
	b := New(u)
	b.AddExtern("bar", "/nix/store/aaa-bar/lib/libbar.rlib")
	b.AddLibPath("/nix/store/bbb-baz/lib")
	b.AddOutput("/nix/store/ccc-foo/lib/libfoo.rlib")

	args := b.Args()
	tail := args[len(args)-4:]
	want := []string{"--extern", "bar=/nix/store/aaa-bar/lib/libbar.rlib", "-L", "dependency=/nix/store/bbb-baz/lib"}
	for i := range want {
		if tail[i] != want[i] {
			t.Fatalf("tail[%d] = %q, want %q", i, tail[i], want[i])
		}
	}
	if b.Output() != "/nix/store/ccc-foo/lib/libfoo.rlib" {
		t.Fatalf("unexpected output: %s", b.Output())
	}
}

func TestShellQuoteRoundTripsEmbeddedQuotesAndMetacharacters(t *testing.T) {
	cases := []string{
		"plain",
		"has space",
		`embedded'quote`,
		`$(dangerous) && rm -rf /`,
		"",
		"feature=\"a\"",
	}
	for _, c := range cases {
		quoted := ShellQuote(c)
		if c == "" {
			if quoted != "''" {
				t.Fatalf("empty string should quote to '', got %q", quoted)
			}
			continue
		}
		if strings.ContainsAny(c, " \t\n'\"$`\\|&;()<>*?[]{}~!#") {
			if !strings.HasPrefix(quoted, "'") || !strings.HasSuffix(quoted, "'") {
				t.Fatalf("expected quoted form for %q, got %q", c, quoted)
			}
		}
	}
}

func TestRenderArgvJoinsWithSpaces(t *testing.T) {
	out := RenderArgv([]string{"--crate-name", "foo bar", "--edition", "2021"})
	if !strings.Contains(out, "'foo bar'") {
		t.Fatalf("expected embedded-space arg to be quoted: %s", out)
	}
}
