package emit

import (
	"fmt"
	"strings"
)

// Attrs is an ordered Nix attribute set: insertion order is preserved on
// render so output is deterministic and diff-stable regardless of any
// upstream map iteration.
type Attrs struct {
	keys   []string
	values []string
}

// NewAttrs creates an empty ordered attribute set.
func NewAttrs() *Attrs {
	return &Attrs{}
}

// Set appends a key/raw-Nix-expression pair. value is inserted verbatim
// (already rendered, e.g. via QuoteString, MultilineBlock, or a nested
// Attrs.Render) — Set does not itself quote anything.
func (a *Attrs) Set(key, value string) *Attrs {
	a.keys = append(a.keys, key)
	a.values = append(a.values, value)
	return a
}

// SetString is a convenience for Set(key, QuoteString(value)).
func (a *Attrs) SetString(key, value string) *Attrs {
	return a.Set(key, QuoteString(value))
}

// SetBool renders a Nix boolean literal.
func (a *Attrs) SetBool(key string, value bool) *Attrs {
	return a.Set(key, fmt.Sprintf("%t", value))
}

// SetStringList renders a Nix list of quoted strings.
func (a *Attrs) SetStringList(key string, values []string) *Attrs {
	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = QuoteString(v)
	}
	return a.Set(key, "[ "+strings.Join(rendered, " ")+" ]")
}

// Render writes the attribute set as `{ k1 = v1; k2 = v2; }`, one
// attribute per line, indented by indent spaces.
func (a *Attrs) Render(indent int) string {
	pad := strings.Repeat(" ", indent)
	var b strings.Builder
	b.WriteString("{\n")
	for i, k := range a.keys {
		fmt.Fprintf(&b, "%s  %s = %s;\n", pad, k, a.values[i])
	}
	b.WriteString(pad + "}")
	return b.String()
}
