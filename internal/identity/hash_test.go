package identity

import (
	"encoding/json"
	"testing"

	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
)

func unitFromJSON(t *testing.T, doc string) graph.Unit {
	t.Helper()
	var u graph.Unit
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		t.Fatalf("unmarshal unit: %v", err)
	}
	return u
}

const baseUnitJSON = `{
	"pkg_id":"foo 0.1.0 (path+file:///ws/foo)",
	"target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},
	"profile":{"name":"dev","opt_level":"0","lto":%s,"debuginfo":false,"strip":false,"debug_assertions":true,"overflow_checks":true},
	"features":["%s"],
	"mode":"build",
	"dependencies":[]
}`

func TestHashDeterministicUnderFeatureOrder(t *testing.T) {
	var u1, u2 graph.Unit
	doc1 := `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":["a","b"],"mode":"build","dependencies":[]}`
	doc2 := `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":["b","a"],"mode":"build","dependencies":[]}`
	if err := json.Unmarshal([]byte(doc1), &u1); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(doc2), &u2); err != nil {
		t.Fatal(err)
	}
	if Hash(u1) != Hash(u2) {
		t.Fatalf("feature order changed hash: %s vs %s", Hash(u1), Hash(u2))
	}
}

func TestHashPolymorphismInvariant(t *testing.T) {
	uFalse := unitFromJSON(t, `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":[],"mode":"build","dependencies":[]}`)
	uOff := unitFromJSON(t, `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":"off","debuginfo":false,"strip":false},"features":[],"mode":"build","dependencies":[]}`)
	if Hash(uFalse) != Hash(uOff) {
		t.Fatalf("lto=false and lto=\"off\" must hash identically, got %s vs %s", Hash(uFalse), Hash(uOff))
	}
}

func TestHashDiscriminatesDifferingFields(t *testing.T) {
	a := unitFromJSON(t, `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":["x"],"mode":"build","dependencies":[]}`)
	b := unitFromJSON(t, `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":["y"],"mode":"build","dependencies":[]}`)
	if Hash(a) == Hash(b) {
		t.Fatal("expected different feature sets to produce different hashes")
	}
}

func TestHashExcludesDependencies(t *testing.T) {
	a := unitFromJSON(t, `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":[],"mode":"build","dependencies":[]}`)
	b := unitFromJSON(t, `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":[],"mode":"build","dependencies":[{"index":0,"extern_crate_name":"self","public":false,"noprelude":false}]}`)
	if Hash(a) != Hash(b) {
		t.Fatal("identity hash must be intrinsic and ignore dependency edges")
	}
}
