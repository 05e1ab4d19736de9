// Package graph holds typed records for the unit-graph JSON emitted by
// `cargo build --unit-graph -Z unstable-options`.
package graph

import (
	"encoding/json"
	"fmt"
)

// strictUnmarshal decodes data into v. Unknown fields are ignored;
// this wrapper exists so every polymorphic UnmarshalJSON method reports
// failures through the same error shape.
func strictUnmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Graph is the top-level unit-graph document.
type Graph struct {
	Version int    `json:"version"`
	Units   []Unit `json:"units"`
	Roots   []int  `json:"roots"`
}

// Mode is the compilation mode cargo assigned to a unit.
type Mode string

const (
	ModeBuild          Mode = "build"
	ModeCheck          Mode = "check"
	ModeTest           Mode = "test"
	ModeDoc            Mode = "doc"
	ModeRunCustomBuild Mode = "run-custom-build"
	ModeDoctest        Mode = "doctest"
)

// PanicStrategy is profile.panic.
type PanicStrategy string

const (
	PanicUnwind PanicStrategy = "unwind"
	PanicAbort  PanicStrategy = "abort"
)

// Unit is one compiler invocation: package, target, features, profile,
// mode and platform.
type Unit struct {
	PkgID        string       `json:"pkg_id"`
	Target       Target       `json:"target"`
	Profile      Profile      `json:"profile"`
	Features     []string     `json:"features"`
	Mode         Mode         `json:"mode"`
	Platform     *string      `json:"platform"`
	Dependencies []Dependency `json:"dependencies"`
}

// Target describes what a unit builds.
type Target struct {
	Name       string   `json:"name"`
	Kind       []string `json:"kind"`
	CrateTypes []string `json:"crate_types"`
	SrcPath    string   `json:"src_path"`
	Edition    string   `json:"edition"`
	Test       bool     `json:"test"`
	Doctest    bool     `json:"doctest"`
	Doc        bool     `json:"doc"`
}

// HasKind reports whether the target carries the given kind
// ("lib", "bin", "proc-macro", "custom-build", "test", "example", "bench").
func (t Target) HasKind(kind string) bool {
	for _, k := range t.Kind {
		if k == kind {
			return true
		}
	}
	return false
}

// rawTarget mirrors Target for unmarshalling, letting test/doctest/doc
// default to true when the source JSON omits them.
type rawTarget struct {
	Name       string   `json:"name"`
	Kind       []string `json:"kind"`
	CrateTypes []string `json:"crate_types"`
	SrcPath    string   `json:"src_path"`
	Edition    string   `json:"edition"`
	Test       *bool    `json:"test"`
	Doctest    *bool    `json:"doctest"`
	Doc        *bool    `json:"doc"`
}

func (t *Target) UnmarshalJSON(data []byte) error {
	var raw rawTarget
	if err := strictUnmarshal(data, &raw); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	*t = Target{
		Name:       raw.Name,
		Kind:       raw.Kind,
		CrateTypes: raw.CrateTypes,
		SrcPath:    raw.SrcPath,
		Edition:    raw.Edition,
		Test:       boolDefault(raw.Test, true),
		Doctest:    boolDefault(raw.Doctest, true),
		Doc:        boolDefault(raw.Doc, true),
	}
	return nil
}

func boolDefault(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Dependency is an edge from a unit to one of its dependencies, identified
// by index into Graph.Units.
type Dependency struct {
	Index           int    `json:"index"`
	ExternCrateName string `json:"extern_crate_name"`
	Public          bool   `json:"public"`
	NoPrelude       bool   `json:"noprelude"`
}

// Profile carries the codegen/debug settings for a unit.
type Profile struct {
	Name            string
	OptLevel        string
	Lto             BoolOrString
	DebugInfo       BoolOrString
	Panic           PanicStrategy
	Strip           BoolOrString
	DebugAssertions bool
	OverflowChecks  bool
	CodegenUnits    *int
	Incremental     bool
}

type rawProfile struct {
	Name            string       `json:"name"`
	OptLevel        string       `json:"opt_level"`
	Lto             BoolOrString `json:"lto"`
	DebugInfo       BoolOrString `json:"debuginfo"`
	Panic           *string      `json:"panic"`
	Strip           BoolOrString `json:"strip"`
	DebugAssertions bool         `json:"debug_assertions"`
	OverflowChecks  bool         `json:"overflow_checks"`
	CodegenUnits    *int         `json:"codegen_units"`
	Incremental     bool         `json:"incremental"`
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw rawProfile
	if err := strictUnmarshal(data, &raw); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	panicMode := PanicUnwind
	if raw.Panic != nil && *raw.Panic != "" {
		panicMode = PanicStrategy(*raw.Panic)
	}
	*p = Profile{
		Name:            raw.Name,
		OptLevel:        raw.OptLevel,
		Lto:             raw.Lto,
		DebugInfo:       raw.DebugInfo,
		Panic:           panicMode,
		Strip:           raw.Strip,
		DebugAssertions: raw.DebugAssertions,
		OverflowChecks:  raw.OverflowChecks,
		CodegenUnits:    raw.CodegenUnits,
		Incremental:     raw.Incremental,
	}
	return nil
}
