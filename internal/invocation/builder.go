// Package invocation reconstructs the rustc command line a unit implies,
// excluding the extern/library-path flags the wiring pass contributes.
package invocation

import (
	"fmt"
	"sort"

	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
)

// Builder accumulates an ordered argv. The base flags (crate-name,
// edition, crate-type, codegen/debug options, feature cfgs, --test) are
// set from the unit at construction time; the wiring pass later appends
// extern/library-path/source/output flags via the mutation methods.
type Builder struct {
	args   []string
	output string
}

// New seeds a Builder with every flag derivable from the unit alone.
func New(u graph.Unit) *Builder {
	b := &Builder{}
	b.args = append(b.args, "--crate-name", u.Target.Name)
	b.args = append(b.args, "--edition", u.Target.Edition)
	for _, ct := range u.Target.CrateTypes {
		b.args = append(b.args, "--crate-type", ct)
	}

	b.args = append(b.args, "-C", "opt-level="+u.Profile.OptLevel)
	b.args = append(b.args, "-C", "debuginfo="+u.Profile.DebugInfo.NormalizeDebugInfo())
	b.args = append(b.args, "-C", "lto="+u.Profile.Lto.NormalizeLto())
	b.args = append(b.args, "-C", "panic="+u.Profile.Panic.String())
	b.args = append(b.args, "-C", "strip="+u.Profile.Strip.NormalizeStrip())
	b.args = append(b.args, "-C", fmt.Sprintf("debug-assertions=%t", u.Profile.DebugAssertions))
	b.args = append(b.args, "-C", fmt.Sprintf("overflow-checks=%t", u.Profile.OverflowChecks))
	if u.Profile.CodegenUnits != nil {
		b.args = append(b.args, "-C", fmt.Sprintf("codegen-units=%d", *u.Profile.CodegenUnits))
	}

	features := append([]string(nil), u.Features...)
	sort.Strings(features)
	for _, f := range features {
		b.args = append(b.args, "--cfg", fmt.Sprintf(`feature="%s"`, f))
	}

	if u.Mode == graph.ModeTest {
		b.args = append(b.args, "--test")
	}

	return b
}

// AddExtern wires a direct dependency's library path as --extern.
func (b *Builder) AddExtern(name, path string) *Builder {
	b.args = append(b.args, "--extern", fmt.Sprintf("%s=%s", name, path))
	return b
}

// AddLibPath wires a transitive dependency's library search path as
// -L dependency=<path>.
func (b *Builder) AddLibPath(path string) *Builder {
	b.args = append(b.args, "-L", "dependency="+path)
	return b
}

// AddSource appends the crate's entry-point source file as the
// positional argument rustc compiles.
func (b *Builder) AddSource(path string) *Builder {
	b.args = append(b.args, path)
	return b
}

// AddOutput sets the unit's crate output path; it does not
// appear in Args(). The wiring pass reads it back through Output() and
// passes it to rustc as -o.
func (b *Builder) AddOutput(path string) *Builder {
	b.output = path
	return b
}

// Output returns the crate output path set by AddOutput, if any.
func (b *Builder) Output() string {
	return b.output
}

// Args returns a defensive copy of the accumulated argv, in the fixed
// order the flags were added, for reproducibility.
func (b *Builder) Args() []string {
	return append([]string(nil), b.args...)
}

// AddCfg appends a bare --cfg flag (the form of a build-script rustc-cfg
// directive). The wiring pass does not call it: dependents forward
// rustc-cfg lines at build time from the run derivation's output files.
func (b *Builder) AddCfg(value string) *Builder {
	b.args = append(b.args, "--cfg", value)
	return b
}

// AddCheckCfg appends a --check-cfg flag (rustc-check-cfg directives).
func (b *Builder) AddCheckCfg(value string) *Builder {
	b.args = append(b.args, "--check-cfg", value)
	return b
}

// AddLinkLib appends -l [kind=]name (build-script rustc-link-lib).
func (b *Builder) AddLinkLib(spec string) *Builder {
	b.args = append(b.args, "-l", spec)
	return b
}

// AddLinkSearch appends -L [kind=]path (build-script rustc-link-search).
func (b *Builder) AddLinkSearch(spec string) *Builder {
	b.args = append(b.args, "-L", spec)
	return b
}

// AddLinkArg appends -C link-arg=<value> (build-script
// rustc-cdylib-link-arg / rustc-link-arg).
func (b *Builder) AddLinkArg(value string) *Builder {
	b.args = append(b.args, "-C", "link-arg="+value)
	return b
}
