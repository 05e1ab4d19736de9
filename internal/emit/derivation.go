package emit

import "fmt"

// Derivation is the builder for a single `mkDerivation` call: a
// compilation unit, or one half of a build-script's two-derivation
// pair.
type Derivation struct {
	Name                  string
	Src                   string
	BuildInputs           []string // raw Nix expressions, usually references into the units rec-set
	NativeBuildInputs     []string
	NativeBuildInputsTail string // raw list expression appended with ++, e.g. extraNativeBuildInputs
	BuildPhase            string
	InstallPhase          string
	Env                   *Attrs
	ContentAddressed      bool
	OutputHashMode        string // "recursive" or "flat"
	OutputHashAlgo        string // "sha256"
	Meta                  *Attrs
}

// Render produces the full `pkgs.stdenv.mkDerivation { ... }` text for
// the derivation, including the content-addressed attributes the
// --content-addressed flag requests.
func (d *Derivation) Render() string {
	a := NewAttrs()
	a.SetString("name", d.Name)
	if d.Src != "" {
		a.Set("src", d.Src)
	}
	if len(d.BuildInputs) > 0 {
		a.Set("buildInputs", "[ "+joinSpace(d.BuildInputs)+" ]")
	}
	if len(d.NativeBuildInputs) > 0 || d.NativeBuildInputsTail != "" {
		expr := "[ " + joinSpace(d.NativeBuildInputs) + " ]"
		if d.NativeBuildInputsTail != "" {
			expr += " ++ " + d.NativeBuildInputsTail
		}
		a.Set("nativeBuildInputs", expr)
	}
	if d.Env != nil {
		for i, k := range d.Env.keys {
			a.Set(k, d.Env.values[i])
		}
	}
	if d.BuildPhase != "" {
		a.Set("buildPhase", MultilineBlock(d.BuildPhase))
	}
	if d.InstallPhase != "" {
		a.Set("installPhase", MultilineBlock(d.InstallPhase))
	}
	if d.ContentAddressed {
		a.SetBool("__contentAddressed", true)
		mode := d.OutputHashMode
		if mode == "" {
			mode = "recursive"
		}
		algo := d.OutputHashAlgo
		if algo == "" {
			algo = "sha256"
		}
		a.SetString("outputHashMode", mode)
		a.SetString("outputHashAlgo", algo)
	}
	if d.Meta != nil {
		a.Set("meta", d.Meta.Render(2))
	}

	return fmt.Sprintf("pkgs.stdenv.mkDerivation %s", a.Render(0))
}

func joinSpace(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
