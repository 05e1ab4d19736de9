package buildscript

import "fmt"

// CompileDerivationName is the Nix attribute name for the derivation
// that compiles a build.rs into an executable (the two-derivation
// model, first half).
func CompileDerivationName(pkgName, version, hash string) string {
	return fmt.Sprintf("%s-build-script-%s-%s", pkgName, version, hash)
}

// RunDerivationName is the Nix attribute name for the derivation that
// executes the compiled build script and captures OUT_DIR plus the
// parsed cargo: directives (the two-derivation model, second half).
func RunDerivationName(pkgName, version, hash string) string {
	return fmt.Sprintf("%s-build-script-run-%s-%s", pkgName, version, hash)
}
