package manifest

import "github.com/ophidian-systems/unitgraph2nix/internal/graph"

// Apply merges [profile.<name>] overrides into every unit whose profile
// name matches, filling only fields the unit graph left unset — the
// graph is authoritative where it carries a value, the manifest is a
// hint for older cargo versions that omitted one. panic is the
// exception: a parsed profile cannot tell an explicit "unwind" from the
// default, so a manifest panic value also replaces "unwind". Must run
// before identity hashing so the recovered values participate in the
// digest.
func Apply(g *graph.Graph, m CargoToml) {
	if len(m.Profile) == 0 {
		return
	}
	for i := range g.Units {
		p := &g.Units[i].Profile
		o, ok := m.Profile[p.Name]
		if !ok {
			continue
		}
		if p.OptLevel == "" {
			if s, ok := StringOverride(o.OptLevel); ok {
				p.OptLevel = s
			}
		}
		if p.Lto == (graph.BoolOrString{}) {
			if s, ok := StringOverride(o.LTO); ok {
				p.Lto = graph.BoolOrString{Str: s}
			}
		}
		if p.DebugInfo == (graph.BoolOrString{}) {
			if s, ok := StringOverride(o.DebugInfo); ok {
				p.DebugInfo = graph.BoolOrString{Str: s}
			}
		}
		if p.Strip == (graph.BoolOrString{}) {
			if s, ok := StringOverride(o.Strip); ok {
				p.Strip = graph.BoolOrString{Str: s}
			}
		}
		if p.Panic == "" || p.Panic == graph.PanicUnwind {
			if s, ok := StringOverride(o.Panic); ok {
				p.Panic = graph.PanicStrategy(s)
			}
		}
		if p.CodegenUnits == nil {
			if n, ok := o.CodegenUnitsOverride(); ok {
				cu := n
				p.CodegenUnits = &cu
			}
		}
	}
}
