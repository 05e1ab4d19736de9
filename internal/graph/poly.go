package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BoolOrString is the tagged-variant model for the lto/debuginfo/strip
// fields, which the unit-graph JSON encodes as either a bool or a string
// enum. The tag is preserved losslessly through parse and re-encode;
// Normalize collapses both arms to the canonical string used for
// identity hashing and flag emission, so `lto=false` and `lto="off"`
// behave identically everywhere downstream of Normalize.
type BoolOrString struct {
	IsBool bool
	Bool   bool
	Str    string
}

func (v BoolOrString) MarshalJSON() ([]byte, error) {
	if v.IsBool {
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.Str)
}

func (v *BoolOrString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*v = BoolOrString{}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolOrString{IsBool: true, Bool: b}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = BoolOrString{Str: s}
		return nil
	}
	return fmt.Errorf("expected bool or string, got %s", string(data))
}

// boolStringNormalizer maps the bool arm of a polymorphic field to its
// canonical string form.
type boolStringNormalizer struct {
	whenTrue  string
	whenFalse string
}

func (v BoolOrString) normalize(n boolStringNormalizer) string {
	if v.IsBool {
		if v.Bool {
			return n.whenTrue
		}
		return n.whenFalse
	}
	return v.Str
}

// NormalizeLto collapses lto=true/false to "fat"/"off" (cargo's own
// default mapping for the boolean shorthand) while passing string values
// ("thin", "thin-local", "off", "fat", a custom string) through unchanged.
func (v BoolOrString) NormalizeLto() string {
	return v.normalize(boolStringNormalizer{whenTrue: "fat", whenFalse: "off"})
}

// NormalizeDebugInfo collapses debuginfo=true/false to cargo's "full"/"none"
// debug levels (rendered numerically: 2/0).
func (v BoolOrString) NormalizeDebugInfo() string {
	return v.normalize(boolStringNormalizer{whenTrue: "2", whenFalse: "0"})
}

// NormalizeStrip collapses strip=true/false to "symbols"/"none".
func (v BoolOrString) NormalizeStrip() string {
	return v.normalize(boolStringNormalizer{whenTrue: "symbols", whenFalse: "none"})
}

func (s PanicStrategy) String() string {
	if s == "" {
		return string(PanicUnwind)
	}
	return string(s)
}
