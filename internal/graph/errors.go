package graph

import "fmt"

// MalformedGraph reports that the unit-graph JSON does not match the
// expected schema. Field identifies the offending JSON path.
type MalformedGraph struct {
	Field  string
	Reason string
}

func (e *MalformedGraph) Error() string {
	return fmt.Sprintf("malformed unit graph at %s: %s", e.Field, e.Reason)
}

// UnresolvedIndex reports a dependency index out of range of Units.
type UnresolvedIndex struct {
	UnitIndex int
	DepIndex  int
}

func (e *UnresolvedIndex) Error() string {
	return fmt.Sprintf("unit %d depends on out-of-range index %d", e.UnitIndex, e.DepIndex)
}
