package buildscript

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
)

// RunEnv computes the deterministic environment variables a build
// script's run derivation exposes to the script process, mirroring the
// CARGO_* variables cargo itself sets.
func RunEnv(id PkgIdentity, u graph.Unit, targetTriple, hostTriple string) map[string]string {
	env := map[string]string{
		"OUT_DIR":            "$out/out-dir",
		"CARGO_MANIFEST_DIR": id.ManifestDir,
		"CARGO_PKG_NAME":     id.Name,
		"CARGO_PKG_VERSION":  id.Version,
		"TARGET":             targetTriple,
		"HOST":               hostTriple,
		"PROFILE":            u.Profile.Name,
	}
	for _, f := range u.Features {
		env["CARGO_FEATURE_"+featureEnvName(f)] = "1"
	}
	return env
}

// PkgIdentity is the subset of a parsed pkg_id plus manifest directory
// a build script's run environment needs; kept separate from
// internal/identity to avoid a dependency cycle (identity does not need
// buildscript, and vice versa — both depend only on graph).
type PkgIdentity struct {
	Name        string
	Version     string
	ManifestDir string
}

func featureEnvName(f string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(f) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// SortedRunEnv returns env as deterministically ordered KEY=VALUE pairs.
func SortedRunEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}
