package emit

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// jsonDerivation is the machine-readable mirror of Derivation for the
// --format json surface. Attribute values stay as the raw Nix
// expressions the nix renderer would have spliced, so a consumer can
// cross-check the two formats line for line.
type jsonDerivation struct {
	Name              string            `json:"name" yaml:"name"`
	Src               string            `json:"src,omitempty" yaml:"src,omitempty"`
	BuildInputs       []string          `json:"buildInputs,omitempty" yaml:"buildInputs,omitempty"`
	NativeBuildInputs []string          `json:"nativeBuildInputs,omitempty" yaml:"nativeBuildInputs,omitempty"`
	Env               map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	BuildPhase        string            `json:"buildPhase,omitempty" yaml:"buildPhase,omitempty"`
	InstallPhase      string            `json:"installPhase,omitempty" yaml:"installPhase,omitempty"`
	ContentAddressed  bool              `json:"contentAddressed,omitempty" yaml:"contentAddressed,omitempty"`
	OutputHashMode    string            `json:"outputHashMode,omitempty" yaml:"outputHashMode,omitempty"`
	OutputHashAlgo    string            `json:"outputHashAlgo,omitempty" yaml:"outputHashAlgo,omitempty"`
	Meta              map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
	Indices           []int             `json:"indices" yaml:"indices"`
}

type jsonDocument struct {
	Units     map[string]jsonDerivation `json:"units" yaml:"units"`
	Roots     []string                  `json:"roots" yaml:"roots"`
	Packages  map[string]string         `json:"packages" yaml:"packages"`
	Binaries  map[string]string         `json:"binaries" yaml:"binaries"`
	Libraries map[string]string         `json:"libraries" yaml:"libraries"`
	Default   string                    `json:"default,omitempty" yaml:"default,omitempty"`
}

// attrsMap flattens an ordered Attrs into a plain map. Key order is lost,
// but encoding/json sorts map keys on output, so the rendered document
// stays deterministic.
func attrsMap(a *Attrs) map[string]string {
	if a == nil || len(a.keys) == 0 {
		return nil
	}
	m := make(map[string]string, len(a.keys))
	for i, k := range a.keys {
		m[k] = a.values[i]
	}
	return m
}

// RenderJSON produces the --format json rendering of the wired document:
// the same units/roots/packages/binaries/libraries/default structure as
// the Nix output, with derivations as structured records instead of
// mkDerivation calls.
func (doc *Document) RenderJSON() (string, error) {
	data, err := json.MarshalIndent(doc.structured(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding json document: %w", err)
	}
	return string(data) + "\n", nil
}

// RenderYAML is the yaml alias of RenderJSON (the same document, for
// YAML-based CI log aggregators).
func (doc *Document) RenderYAML() (string, error) {
	data, err := yaml.Marshal(doc.structured())
	if err != nil {
		return "", fmt.Errorf("encoding yaml document: %w", err)
	}
	return string(data), nil
}

func (doc *Document) structured() jsonDocument {
	out := jsonDocument{
		Units:     make(map[string]jsonDerivation, len(doc.Units)),
		Roots:     make([]string, len(doc.Roots)),
		Packages:  nameMap(doc.Units, doc.Packages),
		Binaries:  nameMap(doc.Units, doc.Binaries),
		Libraries: nameMap(doc.Units, doc.Libraries),
	}
	for _, u := range doc.Units {
		d := u.Drv
		mode := d.OutputHashMode
		algo := d.OutputHashAlgo
		if d.ContentAddressed {
			if mode == "" {
				mode = "recursive"
			}
			if algo == "" {
				algo = "sha256"
			}
		} else {
			mode, algo = "", ""
		}
		out.Units[u.Name] = jsonDerivation{
			Name:              d.Name,
			Src:               d.Src,
			BuildInputs:       d.BuildInputs,
			NativeBuildInputs: d.NativeBuildInputs,
			Env:               attrsMap(d.Env),
			BuildPhase:        d.BuildPhase,
			InstallPhase:      d.InstallPhase,
			ContentAddressed:  d.ContentAddressed,
			OutputHashMode:    mode,
			OutputHashAlgo:    algo,
			Meta:              attrsMap(d.Meta),
			Indices:           u.Aliases,
		}
	}
	for i, idx := range doc.Roots {
		out.Roots[i] = doc.Units[idx].Name
	}
	if doc.Default >= 0 {
		out.Default = doc.Units[doc.Default].Name
	}
	return out
}

func nameMap(units []UnitEntry, byName map[string]int) map[string]string {
	m := make(map[string]string, len(byName))
	for name, idx := range byName {
		m[name] = units[idx].Name
	}
	return m
}
