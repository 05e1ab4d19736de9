package wiring

import (
	"github.com/ophidian-systems/unitgraph2nix/internal/emit"
	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
	"github.com/ophidian-systems/unitgraph2nix/internal/identity"
)

// assembleDocument builds the final emit.Document from the rendered
// entries: roots map to Units indices by derivation name, and the
// packages/binaries/libraries views are restricted to root units only.
// Non-root units, such as a transitive dependency's library, never
// appear in these maps even though they still get a units.<name> entry
// and an _idx_<n> alias.
func assembleDocument(g *graph.Graph, hashes []string, names map[string]string, entries []emit.UnitEntry) *emit.Document {
	entryIndexByName := make(map[string]int, len(entries))
	for i, e := range entries {
		entryIndexByName[e.Name] = i
	}

	roots := make([]int, 0, len(g.Roots))
	packages := map[string]int{}
	binaries := map[string]int{}
	libraries := map[string]int{}

	for _, rootIdx := range g.Roots {
		name := names[hashes[rootIdx]]
		entryIdx, ok := entryIndexByName[name]
		if !ok {
			continue
		}
		roots = append(roots, entryIdx)

		u := g.Units[rootIdx]
		pkgName := u.Target.Name
		if id, err := identity.ParsePkgID(u.PkgID); err == nil {
			pkgName = id.Name
		}
		packages[pkgName] = entryIdx

		if u.Target.HasKind("bin") {
			binaries[u.Target.Name] = entryIdx
		}
		if u.Target.HasKind("lib") || u.Target.HasKind("rlib") || u.Target.HasKind("dylib") || u.Target.HasKind("proc-macro") {
			libraries[u.Target.Name] = entryIdx
		}
	}

	defaultIdx := -1
	if len(roots) > 0 {
		defaultIdx = roots[0]
	}

	return &emit.Document{
		Units:     entries,
		Roots:     roots,
		Packages:  packages,
		Binaries:  binaries,
		Libraries: libraries,
		Default:   defaultIdx,
	}
}
