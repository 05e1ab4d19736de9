package identity

import "testing"

func TestParsePkgIDPath(t *testing.T) {
	id, err := ParsePkgID("foo 0.1.0 (path+file:///ws/foo)")
	if err != nil {
		t.Fatal(err)
	}
	if id.Name != "foo" || id.Version != "0.1.0" || id.Source.Type != Path || id.Source.Root != "/ws/foo" {
		t.Fatalf("unexpected parse: %+v", id)
	}
}

func TestParsePkgIDRegistry(t *testing.T) {
	id, err := ParsePkgID("serde 1.0.195 (registry+https://github.com/rust-lang/crates.io-index)")
	if err != nil {
		t.Fatal(err)
	}
	if id.Source.Type != Registry || id.Source.Raw != "https://github.com/rust-lang/crates.io-index" {
		t.Fatalf("unexpected parse: %+v", id)
	}
}

func TestParsePkgIDGit(t *testing.T) {
	id, err := ParsePkgID("thing 0.2.0 (git+https://example.com/thing?rev=abcdef#abcdef0123456789)")
	if err != nil {
		t.Fatal(err)
	}
	if id.Source.Type != Git {
		t.Fatalf("expected git source, got %+v", id)
	}
}

func TestParsePkgIDInvalid(t *testing.T) {
	if _, err := ParsePkgID("not a pkg id"); err == nil {
		t.Fatal("expected error for malformed pkg_id")
	}
	if _, err := ParsePkgID("foo 0.1.0 (bogus+thing)"); err == nil {
		t.Fatal("expected error for unknown source prefix")
	}
}

func TestRemapInsideWorkspace(t *testing.T) {
	r := Remap("/ws/foo/src/lib.rs", "/ws")
	if !r.InWorkspace || r.Expr != "${src}/foo/src/lib.rs" {
		t.Fatalf("unexpected remap: %+v", r)
	}
}

func TestRemapOutsideWorkspace(t *testing.T) {
	r := Remap("/home/user/.cargo/registry/src/serde/lib.rs", "/ws")
	if r.InWorkspace {
		t.Fatalf("expected out-of-workspace path to report InWorkspace=false, got %+v", r)
	}
}
