// Package wiring implements the two-pass wiring algorithm: it
// dedupes duplicate logical units, emits the build-script
// compile/run derivation pairs (Pass A), then wires every regular unit's
// externs, transitive library-search paths and build-script references
// into a rendered per-unit derivation (Pass B), finally grouping roots
// into the packages/binaries/libraries/default consumer views.
package wiring

import (
	"fmt"

	"github.com/ophidian-systems/unitgraph2nix/internal/buildscript"
	"github.com/ophidian-systems/unitgraph2nix/internal/diagnostic"
	"github.com/ophidian-systems/unitgraph2nix/internal/emit"
	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
	"github.com/ophidian-systems/unitgraph2nix/internal/identity"
)

// Options configures a Wire pass from the driver's CLI surface.
type Options struct {
	WorkspaceRoot    string
	ContentAddressed bool
	CrossCompile     bool
	HostPlatform     string
	TargetPlatform   string
}

// resolvedDep is one deduplicated dependency edge of a canonical unit:
// an extern name paired with the target's intrinsic identity hash.
type resolvedDep struct {
	ExternCrateName string
	TargetHash      string
	Public          bool
}

// canonicalUnit is the single representative for every graph.Unit
// sharing an identity hash: its dependency set is the union of
// every occurrence's edges, keyed by (extern name, target hash) so a
// diamond-shaped dependency graph collapses to one set of flags instead
// of one per path.
type canonicalUnit struct {
	hash     string
	unit     graph.Unit
	aliases  []int // original graph.Unit indices collapsed into this entry
	deps     []resolvedDep
	seenDeps map[string]bool
}

// buildScriptRef is what Pass A records for a run-custom-build unit: the
// names of its compile/run derivation pair, looked up by dependents in
// Pass B instead of treating the build script as an extern.
type buildScriptRef struct {
	compileHash string
	compileName string
	runName     string
}

// Wire runs both wiring passes over g and returns the document ready for
// internal/emit to render as the final Nix expression.
func Wire(g *graph.Graph, opts Options) (*emit.Document, error) {
	n := len(g.Units)
	hashes := make([]string, n)
	for i, u := range g.Units {
		hashes[i] = identity.Hash(u)
	}

	order, canon := dedupe(g, hashes)

	names := make(map[string]string, len(order))
	for _, h := range order {
		name, err := derivationNameFor(canon[h])
		if err != nil {
			return nil, err
		}
		names[h] = name
	}

	emitted := map[string]bool{}
	refs := map[string]buildScriptRef{}
	var entries []emit.UnitEntry

	// Pass A — build scripts.
	for _, h := range order {
		c := canon[h]
		if c.unit.Mode != graph.ModeRunCustomBuild {
			continue
		}
		compileHash, ok := findBuildScriptCompileDep(c, canon)
		if !ok {
			// A run-custom-build unit with no discoverable compile
			// dependency is malformed input rather than a silent skip:
			// every real unit graph pairs the two.
			return nil, &graph.MalformedGraph{
				Field:  fmt.Sprintf("units[?].dependencies (pkg_id=%s)", c.unit.PkgID),
				Reason: "run-custom-build unit has no custom-build compile dependency",
			}
		}
		compileCanon := canon[compileHash]
		compileName := names[compileHash]
		runName := names[h]

		if !emitted[compileHash] {
			compileDrv, err := renderUnitDerivation(compileCanon, canon, names, refs, opts)
			if err != nil {
				return nil, err
			}
			entries = append(entries, emit.UnitEntry{Name: compileName, Drv: compileDrv, Aliases: compileCanon.aliases})
			emitted[compileHash] = true
		}

		runDrv := renderRunDerivation(compileCanon.unit, c.unit, runName, compileName, opts)
		entries = append(entries, emit.UnitEntry{Name: runName, Drv: runDrv, Aliases: c.aliases})
		emitted[h] = true

		refs[h] = buildScriptRef{compileHash: compileHash, compileName: compileName, runName: runName}
	}

	// Pass B — regular units.
	for _, h := range order {
		if emitted[h] {
			continue
		}
		c := canon[h]
		drv, err := renderUnitDerivation(c, canon, names, refs, opts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, emit.UnitEntry{Name: names[h], Drv: drv, Aliases: c.aliases})
		emitted[h] = true
	}

	return assembleDocument(g, hashes, names, entries), nil
}

// dedupe groups units by intrinsic identity hash, unioning
// dependency edges across every occurrence of a duplicated logical unit
// so a diamond dependency resolves to one canonical derivation instead
// of mismatched SVHs at link time.
func dedupe(g *graph.Graph, hashes []string) ([]string, map[string]*canonicalUnit) {
	var order []string
	canon := map[string]*canonicalUnit{}
	for i, u := range g.Units {
		h := hashes[i]
		c, ok := canon[h]
		if !ok {
			c = &canonicalUnit{hash: h, unit: u, seenDeps: map[string]bool{}}
			canon[h] = c
			order = append(order, h)
		}
		c.aliases = append(c.aliases, i)
		for _, d := range u.Dependencies {
			key := d.ExternCrateName + "\x00" + hashes[d.Index]
			if c.seenDeps[key] {
				continue
			}
			c.seenDeps[key] = true
			c.deps = append(c.deps, resolvedDep{
				ExternCrateName: d.ExternCrateName,
				TargetHash:      hashes[d.Index],
				Public:          d.Public,
			})
		}
	}
	return order, canon
}

// findBuildScriptCompileDep locates, among c's dependencies, the one
// whose canonical target is the "compile build.rs to a binary" unit
// (target.kind contains custom-build, mode build) that every
// run-custom-build unit depends on.
func findBuildScriptCompileDep(c *canonicalUnit, canon map[string]*canonicalUnit) (string, bool) {
	for _, d := range c.deps {
		target := canon[d.TargetHash]
		if target.unit.Mode == graph.ModeBuild && target.unit.Target.HasKind("custom-build") {
			return d.TargetHash, true
		}
	}
	return "", false
}

// derivationNameFor picks the naming convention for a canonical
// unit: <crate>-<ver>-<hash> for ordinary units, or the build-script
// compile/run variants for build-script units.
func derivationNameFor(c *canonicalUnit) (string, error) {
	id, err := identity.ParsePkgID(c.unit.PkgID)
	if err != nil {
		return "", &diagnostic.InvalidSourceSpec{PkgID: c.unit.PkgID, Cause: err}
	}
	switch {
	case c.unit.Mode == graph.ModeRunCustomBuild:
		return buildscript.RunDerivationName(id.Name, id.Version, c.hash), nil
	case c.unit.Target.HasKind("custom-build"):
		return buildscript.CompileDerivationName(id.Name, id.Version, c.hash), nil
	default:
		return fmt.Sprintf("%s-%s-%s", id.Name, id.Version, c.hash), nil
	}
}
