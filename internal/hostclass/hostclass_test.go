package hostclass

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

func TestIsBuildScriptDetectsCustomBuildKind(t *testing.T) {
	u := unitFromJSON(t, `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"build-script-build","kind":["custom-build"],"crate_types":["bin"],"src_path":"/ws/foo/build.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":[],"mode":"build","dependencies":[]}`)
	if !IsBuildScript(u) {
		t.Fatal("expected custom-build kind to be classified as a build script")
	}
}

func TestIsBuildScriptDetectsRunCustomBuildMode(t *testing.T) {
	u := unitFromJSON(t, `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":[],"mode":"run-custom-build","dependencies":[]}`)
	if !IsBuildScript(u) {
		t.Fatal("expected run-custom-build mode to be classified as a build script")
	}
}

func TestIsProcMacro(t *testing.T) {
	u := unitFromJSON(t, `{"pkg_id":"derive 0.1.0 (path+file:///ws/derive)","target":{"name":"derive","kind":["proc-macro"],"crate_types":["proc-macro"],"src_path":"/ws/derive/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":[],"mode":"build","dependencies":[]}`)
	if !IsProcMacro(u) {
		t.Fatal("expected proc-macro kind to be detected")
	}
	if !IsHostCompiled(u, "x86_64-unknown-linux-gnu") {
		t.Fatal("proc-macros must always be host-compiled")
	}
}

func TestIsHostCompiledFollowsPlatformOtherwise(t *testing.T) {
	host := "x86_64-unknown-linux-gnu"
	plain := unitFromJSON(t, `{"pkg_id":"foo 0.1.0 (path+file:///ws/foo)","target":{"name":"foo","kind":["lib"],"crate_types":["lib"],"src_path":"/ws/foo/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":false,"debuginfo":false,"strip":false},"features":[],"mode":"build","dependencies":[],"platform":"aarch64-unknown-linux-gnu"}`)
	if IsHostCompiled(plain, host) {
		t.Fatal("ordinary crate targeting a different platform must not be host-compiled")
	}
}

func TestProcMacroExtByPlatform(t *testing.T) {
	cases := map[string]string{
		"x86_64-unknown-linux-gnu":  ".so",
		"x86_64-apple-darwin":       ".dylib",
		"aarch64-apple-darwin":      ".dylib",
		"x86_64-pc-windows-msvc":    ".dll",
		"x86_64-pc-windows-gnu":     ".dll",
	}
	for platform, want := range cases {
		if got := ProcMacroExt(platform); got != want {
			t.Errorf("ProcMacroExt(%q) = %q, want %q", platform, got, want)
		}
	}
}
