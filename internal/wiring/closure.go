package wiring

import "github.com/ophidian-systems/unitgraph2nix/internal/hostclass"

// transitiveLibraryClosure computes the full reachable set of
// non-build-script units starting from starts, walking each unit's own
// dependency edges. The compiler verifies the SVH of
// every transitively-embedded dependency; omitting any member of this
// closure from -L would produce a misleading "can't find crate" error
// naming a direct dependency instead of the actually-missing transitive
// one. Build scripts are excluded: they are never linked into anything,
// so their own dependencies do not belong in a dependent's link closure.
func transitiveLibraryClosure(starts []string, canon map[string]*canonicalUnit) []string {
	seen := map[string]bool{}
	var order []string

	var visit func(h string)
	visit = func(h string) {
		if seen[h] {
			return
		}
		seen[h] = true
		c, ok := canon[h]
		if !ok || hostclass.IsBuildScript(c.unit) {
			return
		}
		order = append(order, h)
		for _, d := range c.deps {
			visit(d.TargetHash)
		}
	}
	for _, h := range starts {
		visit(h)
	}
	return order
}
