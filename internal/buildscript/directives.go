// Package buildscript parses `cargo:<key>=<value>` directive lines
// emitted on stdout by a build script's run derivation, and renders the
// two-derivation model (compile the build script, then run it) that
// feeds those directives back into dependent units' invocations.
//
// The directive grammar mirrors what a running `cargo build` itself
// consumes: unknown keys are warnings, not fatal errors, and the
// rerun-if-* family is intentionally ignored since there is no
// incremental rebuild model downstream of a derivation graph.
package buildscript

import (
	"fmt"
	"sort"
	"strings"
)

// Directives is the parsed, structured form of a build script's stdout.
type Directives struct {
	RustcCfg       []string
	RustcCheckCfg  []string
	LinkLib        []string
	LinkSearch     []string
	LinkArg        []string
	CdylibLinkArg  []string
	Env            map[string]string
	Warnings       []string
	UnknownLines   []string
}

// ParseDirectives scans stdout line by line for `cargo:` directives,
// grouping them by key. Lines that are not
// `cargo:`-prefixed are ignored (a build script may print anything else
// to stdout without it being interpreted as a directive).
func ParseDirectives(stdout string) Directives {
	d := Directives{Env: make(map[string]string)}

	for _, rawLine := range strings.Split(stdout, "\n") {
		line := strings.TrimSpace(rawLine)
		if !strings.HasPrefix(line, "cargo:") {
			continue
		}
		line = strings.TrimPrefix(line, "cargo:")

		if line == "" {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			d.UnknownLines = append(d.UnknownLines, line)
			continue
		}
		key, value := parts[0], parts[1]

		switch {
		case key == "rerun-if-changed", key == "rerun-if-env-changed":
			// No incremental rebuild model downstream of a derivation
			// graph; these never affect emitted output.
		case key == "rustc-cfg":
			d.RustcCfg = append(d.RustcCfg, value)
		case key == "rustc-check-cfg":
			d.RustcCheckCfg = append(d.RustcCheckCfg, value)
		case key == "rustc-link-lib":
			d.LinkLib = append(d.LinkLib, value)
		case key == "rustc-link-search":
			d.LinkSearch = append(d.LinkSearch, value)
		case key == "rustc-link-arg" || strings.HasPrefix(key, "rustc-link-arg-"):
			d.LinkArg = append(d.LinkArg, value)
		case key == "rustc-cdylib-link-arg":
			d.CdylibLinkArg = append(d.CdylibLinkArg, value)
		case key == "rustc-env":
			kv := strings.SplitN(value, "=", 2)
			if len(kv) == 2 {
				d.Env[kv[0]] = kv[1]
			}
		case key == "warning":
			d.Warnings = append(d.Warnings, value)
		default:
			d.UnknownLines = append(d.UnknownLines, fmt.Sprintf("%s=%s", key, value))
		}
	}

	return d
}

// SortedEnv returns the rustc-env directives as deterministically
// ordered KEY=VALUE pairs, for reproducible derivation text.
func (d Directives) SortedEnv() []string {
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, d.Env[k]))
	}
	return out
}
