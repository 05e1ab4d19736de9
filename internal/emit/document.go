package emit

import (
	"fmt"
	"sort"
)

// UnitEntry is one named derivation destined for the `units` rec-set,
// plus the index aliases (original unit-graph indices that resolved to
// it after dedup) the consumer contract promises under `_idx_<n>`.
type UnitEntry struct {
	Name    string
	Drv     *Derivation
	Aliases []int
}

// Document is the fully wired translation result, ready to render as the
// single callable Nix expression consumers import.
type Document struct {
	Units     []UnitEntry
	Roots     []int // indices into Units (not the original graph indices)
	Packages  map[string]int
	Binaries  map[string]int
	Libraries map[string]int
	Default   int // index into Units, or -1 if there are no roots
}

// Render produces the complete
//
//	{ pkgs, rustToolchain, hostRustToolchain ? rustToolchain, src,
//	  vendorDir ? null, extraNativeBuildInputs ? [] }:
//	  { units = { ... }; roots = [ ... ]; packages = { ... };
//	    binaries = { ... }; libraries = { ... }; default = ...; }
//
// document.
func (doc *Document) Render() string {
	unitsAttr := NewAttrs()
	for _, u := range doc.Units {
		unitsAttr.Set(QuoteString(u.Name), u.Drv.Render())
	}
	for _, u := range doc.Units {
		for _, idx := range u.Aliases {
			unitsAttr.Set(fmt.Sprintf("_idx_%d", idx), "units."+QuoteString(u.Name))
		}
	}

	rootRefs := make([]string, len(doc.Roots))
	for i, idx := range doc.Roots {
		rootRefs[i] = "units." + QuoteString(doc.Units[idx].Name)
	}

	packagesAttr := nameRefAttrs(doc.Units, doc.Packages)
	binariesAttr := nameRefAttrs(doc.Units, doc.Binaries)
	librariesAttr := nameRefAttrs(doc.Units, doc.Libraries)

	var defaultExpr string
	if doc.Default >= 0 {
		defaultExpr = "units." + QuoteString(doc.Units[doc.Default].Name)
	} else {
		defaultExpr = "null"
	}

	body := NewAttrs()
	body.Set("units", "units")
	body.Set("roots", "[ "+joinSpace(rootRefs)+" ]")
	body.Set("packages", packagesAttr.Render(2))
	body.Set("binaries", binariesAttr.Render(2))
	body.Set("libraries", librariesAttr.Render(2))
	body.Set("default", defaultExpr)

	return fmt.Sprintf(
		"{ pkgs, rustToolchain, hostRustToolchain ? rustToolchain, src, vendorDir ? null, extraNativeBuildInputs ? [] }:\nlet\n  units = rec %s;\nin\n%s\n",
		unitsAttr.Render(2),
		body.Render(0),
	)
}

func nameRefAttrs(units []UnitEntry, byName map[string]int) *Attrs {
	a := NewAttrs()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a.Set(QuoteString(name), "units."+QuoteString(units[byName[name]].Name))
	}
	return a
}
