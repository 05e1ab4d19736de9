package emit

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAttrsPreserveInsertionOrder(t *testing.T) {
	a := NewAttrs()
	a.Set("zeta", "1")
	a.Set("alpha", "2")
	a.SetString("mid", "v")
	out := a.Render(0)

	zi := strings.Index(out, "zeta")
	ai := strings.Index(out, "alpha")
	mi := strings.Index(out, "mid")
	if zi < 0 || ai < 0 || mi < 0 || !(zi < ai && ai < mi) {
		t.Fatalf("attributes reordered:\n%s", out)
	}
	if !strings.Contains(out, `mid = "v";`) {
		t.Fatalf("SetString must quote:\n%s", out)
	}
}

func TestDerivationRenderContentAddressedAttributes(t *testing.T) {
	d := &Derivation{Name: "foo-1.0.0-abc", ContentAddressed: true}
	out := d.Render()
	for _, want := range []string{
		"__contentAddressed = true;",
		`outputHashMode = "recursive";`,
		`outputHashAlgo = "sha256";`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	plain := (&Derivation{Name: "foo-1.0.0-abc"}).Render()
	if strings.Contains(plain, "__contentAddressed") {
		t.Fatalf("content-addressed attributes leaked into plain derivation:\n%s", plain)
	}
}

func TestDerivationRenderNativeBuildInputsTail(t *testing.T) {
	d := &Derivation{
		Name:                  "foo-1.0.0-abc",
		NativeBuildInputs:     []string{"rustToolchain"},
		NativeBuildInputsTail: "extraNativeBuildInputs",
	}
	out := d.Render()
	if !strings.Contains(out, "nativeBuildInputs = [ rustToolchain ] ++ extraNativeBuildInputs;") {
		t.Fatalf("missing appended native build inputs:\n%s", out)
	}
}

func TestDocumentRenderEmptyIsCallable(t *testing.T) {
	doc := &Document{Default: -1}
	out := doc.Render()
	if !strings.HasPrefix(out, "{ pkgs, rustToolchain, hostRustToolchain ? rustToolchain, src, vendorDir ? null, extraNativeBuildInputs ? [] }:") {
		t.Fatalf("not the callable form:\n%s", out)
	}
	if !strings.Contains(out, "default = null;") {
		t.Fatalf("empty document needs default = null:\n%s", out)
	}
}

func TestDocumentRenderJSONMatchesStructure(t *testing.T) {
	doc := &Document{
		Units: []UnitEntry{{
			Name:    "foo-1.0.0-abc",
			Drv:     &Derivation{Name: "foo-1.0.0-abc", Src: "src", BuildPhase: "true"},
			Aliases: []int{0, 3},
		}},
		Roots:     []int{0},
		Packages:  map[string]int{"foo": 0},
		Binaries:  map[string]int{},
		Libraries: map[string]int{"foo": 0},
		Default:   0,
	}

	out, err := doc.RenderJSON()
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var decoded struct {
		Units map[string]struct {
			Indices []int `json:"indices"`
		} `json:"units"`
		Roots   []string `json:"roots"`
		Default string   `json:"default"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	u, ok := decoded.Units["foo-1.0.0-abc"]
	if !ok {
		t.Fatalf("missing unit: %s", out)
	}
	if len(u.Indices) != 2 || u.Indices[1] != 3 {
		t.Fatalf("aliases not carried: %+v", u)
	}
	if decoded.Default != "foo-1.0.0-abc" || len(decoded.Roots) != 1 {
		t.Fatalf("roots/default mismatch: %+v", decoded)
	}
}

func TestDocumentRenderYAML(t *testing.T) {
	doc := &Document{
		Units:     []UnitEntry{{Name: "foo-1.0.0-abc", Drv: &Derivation{Name: "foo-1.0.0-abc"}}},
		Roots:     []int{0},
		Packages:  map[string]int{"foo": 0},
		Binaries:  map[string]int{},
		Libraries: map[string]int{},
		Default:   0,
	}
	out, err := doc.RenderYAML()
	if err != nil {
		t.Fatalf("RenderYAML: %v", err)
	}
	if !strings.Contains(out, "foo-1.0.0-abc") || !strings.Contains(out, "default:") {
		t.Fatalf("yaml output incomplete:\n%s", out)
	}
}
