package graph

import (
	"encoding/json"
	"fmt"
)

// Parse decodes a unit-graph JSON document. Unknown fields are ignored;
// missing optional fields take the documented defaults. Schema
// validation against the embedded CUE contract happens one layer up in
// internal/schema, ahead of this call.
func Parse(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, &MalformedGraph{Field: "$", Reason: err.Error()}
	}
	if err := validateIndices(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

// validateIndices checks that every dependency index and every root index
// is in range, and that roots are well formed. A dependency index out of
// range is fatal; the graph is a DAG reachable purely
// through indices, so this is the only shape invariant Parse owns
// beyond what encoding/json already enforces.
func validateIndices(g *Graph) error {
	n := len(g.Units)
	for i, u := range g.Units {
		for _, d := range u.Dependencies {
			if d.Index < 0 || d.Index >= n {
				return &UnresolvedIndex{UnitIndex: i, DepIndex: d.Index}
			}
		}
	}
	for _, r := range g.Roots {
		if r < 0 || r >= n {
			return &MalformedGraph{Field: "roots", Reason: fmt.Sprintf("root index %d out of range", r)}
		}
	}
	return nil
}
