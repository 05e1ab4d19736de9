// Package manifest recovers [profile.*] overrides from a workspace
// Cargo.toml that older cargo versions do not always mirror verbatim
// into the unit-graph JSON's profile records. It is optional: the
// driver only consults it when --manifest-hints is given.
// The decode shape follows the build-metadata-action
// Rust extractor's CargoToml struct, including its polymorphic
// interface{}-typed fields for workspace-inherited values.
package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// CargoToml is the subset of a workspace Cargo.toml this translator
// reads: only [profile.*] overrides matter here, everything else about
// dependency resolution is already baked into the unit graph.
type CargoToml struct {
	Profile map[string]ProfileOverride `toml:"profile"`
}

// ProfileOverride mirrors a [profile.<name>] table. Fields use
// interface{} because cargo permits several of these to be inherited
// from a workspace-level table instead of given a concrete value — the
// same polymorphic decode idiom the build-metadata-action extractor
// uses for Package.Version et al.
type ProfileOverride struct {
	OptLevel     interface{} `toml:"opt-level"`
	LTO          interface{} `toml:"lto"`
	CodegenUnits interface{} `toml:"codegen-units"`
	Panic        interface{} `toml:"panic"`
	DebugInfo    interface{} `toml:"debug"`
	Strip        interface{} `toml:"strip"`
}

// Load parses a Cargo.toml file, returning only its [profile.*] tables.
func Load(path string) (CargoToml, error) {
	var m CargoToml
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return CargoToml{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// CodegenUnitsOverride returns the [profile.<name>].codegen-units value
// as an int, when present as a concrete (non-inherited) integer.
func (o ProfileOverride) CodegenUnitsOverride() (int, bool) {
	switch v := o.CodegenUnits.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// StringOverride returns a polymorphic field's value when it is a
// concrete string rather than a workspace-inherited table.
func StringOverride(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
