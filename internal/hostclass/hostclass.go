// Package hostclass classifies units by the toolchain that builds them:
// target platform (ordinary crates) vs. host platform (proc-macros and
// build scripts, which rustc must always execute during the target
// build even when cross-compiling).
package hostclass

import "github.com/ophidian-systems/unitgraph2nix/internal/graph"

// IsBuildScript reports whether a unit is a build-script compilation or
// invocation (target.kind contains "custom-build", or mode is
// run-custom-build).
func IsBuildScript(u graph.Unit) bool {
	if u.Mode == graph.ModeRunCustomBuild {
		return true
	}
	return u.Target.HasKind("custom-build")
}

// IsProcMacro reports whether a unit produces a proc-macro crate.
func IsProcMacro(u graph.Unit) bool {
	return u.Target.HasKind("proc-macro")
}

// IsHostCompiled reports whether a unit must be compiled for the host
// triple rather than the target triple: proc-macros (loaded into the
// host compiler process) and build scripts (executed by the host during
// the build) always are, regardless of u.Platform.
func IsHostCompiled(u graph.Unit, hostTriple string) bool {
	if IsProcMacro(u) || IsBuildScript(u) {
		return true
	}
	return u.Platform != nil && *u.Platform == hostTriple
}

// ProcMacroExt returns the shared-library extension a proc-macro's
// compiled output carries on the given platform triple.
func ProcMacroExt(platform string) string {
	switch {
	case containsAny(platform, "apple", "darwin"):
		return ".dylib"
	case containsAny(platform, "windows"):
		return ".dll"
	default:
		return ".so"
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, substr := range substrs {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
	}
	return false
}
