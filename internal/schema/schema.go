// Package schema is the CUE contract guard between the untyped
// unit-graph JSON on stdin and internal/graph's typed structs: crash
// early, crash loud, before a half-decoded graph can reach the wiring
// pass.
package schema

import (
	"embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed unitgraph.cue
var schemaFS embed.FS

// Guard validates raw unit-graph JSON against the embedded CUE contract
// before internal/graph ever attempts to decode it into structs. A
// unification failure is surfaced as a field-path-qualified error
// matching the MalformedGraph shape; the caller wraps it accordingly.
type Guard struct {
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema once for reuse across Validate calls.
func New() (*Guard, error) {
	ctx := cuecontext.New()
	data, err := schemaFS.ReadFile("unitgraph.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded unit-graph schema: %w", err)
	}
	schema := ctx.CompileBytes(data)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling unit-graph schema: %w", schema.Err())
	}
	return &Guard{ctx: ctx, schema: schema}, nil
}

// Validate unifies raw JSON bytes against the #Input definition. A nil
// return means the shape is acceptable for internal/graph.Parse; any
// non-nil error names the offending field path.
func (g *Guard) Validate(raw []byte) error {
	data := g.ctx.CompileBytes(raw)
	if data.Err() != nil {
		return fmt.Errorf("parsing graph as CUE value: %w", data.Err())
	}
	input := g.schema.LookupPath(cue.ParsePath("#Input"))
	if input.Err() != nil {
		return fmt.Errorf("looking up #Input definition: %w", input.Err())
	}
	unified := input.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		msgs := errors.Errors(err)
		if len(msgs) > 0 {
			return fmt.Errorf("unit graph does not match schema: %s", msgs[0].Error())
		}
		return fmt.Errorf("unit graph does not match schema: %w", err)
	}
	return nil
}
