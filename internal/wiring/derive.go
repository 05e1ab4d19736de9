package wiring

import (
	"fmt"
	"strings"

	"github.com/ophidian-systems/unitgraph2nix/internal/buildscript"
	"github.com/ophidian-systems/unitgraph2nix/internal/diagnostic"
	"github.com/ophidian-systems/unitgraph2nix/internal/emit"
	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
	"github.com/ophidian-systems/unitgraph2nix/internal/hostclass"
	"github.com/ophidian-systems/unitgraph2nix/internal/identity"
	"github.com/ophidian-systems/unitgraph2nix/internal/invocation"
)

// crateFileStem converts a crate name to the file-stem rustc uses for
// its rlib (hyphens to underscores).
func crateFileStem(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// outputKind classifies a unit's artifact shape for naming purposes.
type outputKind int

const (
	outputLib outputKind = iota
	outputBin
	outputProcMacro
	outputBuildScriptBin
)

func classifyOutput(u graph.Unit) outputKind {
	switch {
	case u.Target.HasKind("custom-build"):
		return outputBuildScriptBin
	case hostclass.IsProcMacro(u):
		return outputProcMacro
	case u.Target.HasKind("bin"):
		return outputBin
	default:
		return outputLib
	}
}

// envIdent turns an arbitrary crate/extern name into a safe shell/Nix
// identifier, used both as a mkDerivation attribute name and as the
// shell variable Nix exposes it under during the build.
func envIdent(prefix, name string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// toolchainRef picks rustToolchain vs hostRustToolchain.
func toolchainRef(u graph.Unit, opts Options) string {
	if opts.CrossCompile && hostclass.IsHostCompiled(u, opts.HostPlatform) {
		return "hostRustToolchain"
	}
	return "rustToolchain"
}

// renderUnitDerivation builds the derivation for one canonical unit.
// Build-script compile units and ordinary lib/bin/proc-macro units share
// this logic: their dependency-wiring rules are identical, and only the
// output naming (already baked into names[c.hash] by derivationNameFor)
// and artifact path differ.
func renderUnitDerivation(c *canonicalUnit, canon map[string]*canonicalUnit, names map[string]string, refs map[string]buildScriptRef, opts Options) (*emit.Derivation, error) {
	u := c.unit
	kind := classifyOutput(u)
	toolchain := toolchainRef(u, opts)

	id, err := identity.ParsePkgID(u.PkgID)
	if err != nil {
		return nil, &diagnostic.InvalidSourceSpec{PkgID: u.PkgID, Cause: err}
	}

	env := emit.NewAttrs()
	var buildInputs []string
	var script strings.Builder

	script.WriteString("#!/bin/sh\nset -eu\nmkdir -p \"$out/lib\" \"$out/bin\"\n")
	script.WriteString("EXTERN_ARGS=\"\"\nLIB_ARGS=\"\"\nEXTRA_ARGS=\"\"\n")

	inv := invocation.New(u)

	// The entry-point source file rustc compiles. Workspace crates are
	// addressed relative to the src argument; registry/git crates come
	// from vendorDir when given (their checkout's absolute path is
	// nondeterministic, so it must never appear in the derivation).
	srcExpr := "src"
	entry := u.Target.SrcPath
	if id.Source.Type == identity.Path {
		if remap := identity.Remap(u.Target.SrcPath, opts.WorkspaceRoot); remap.InWorkspace {
			entry = strings.TrimPrefix(remap.Expr, "${src}/")
		}
	} else {
		loc := identity.NewSourceLocation(id, u.Target.SrcPath)
		srcExpr = fmt.Sprintf("(if vendorDir != null then \"${vendorDir}/%s-%s\" else src)", id.Name, id.Version)
		entry = loc.EntryPoint
	}
	inv.AddSource(entry)

	// Direct dependencies: a run-custom-build dependency contributes
	// cfg/link/env facts consumed at build time rather
	// than an --extern; every other dependency becomes --extern plus a
	// buildInputs entry and a transitive-closure seed.
	var directLibStarts []string
	directVarByHash := map[string]string{}
	refIdx := 0
	for _, d := range c.deps {
		target, ok := canon[d.TargetHash]
		if !ok {
			continue
		}
		if target.unit.Mode == graph.ModeRunCustomBuild {
			ref, ok := refs[d.TargetHash]
			if !ok {
				continue
			}
			varName := fmt.Sprintf("BUILD_SCRIPT_RUN_%d", refIdx)
			refIdx++
			refExpr := "units." + emit.QuoteString(ref.runName)
			env.Set(varName, refExpr)
			buildInputs = append(buildInputs, refExpr)
			script.WriteString(buildScriptConsumptionSnippet(varName))
			continue
		}

		varName := envIdent("DEP_", d.ExternCrateName)
		refExpr := "units." + emit.QuoteString(names[d.TargetHash])
		env.Set(varName, refExpr)
		buildInputs = append(buildInputs, refExpr)
		directLibStarts = append(directLibStarts, d.TargetHash)
		directVarByHash[d.TargetHash] = varName

		if hostclass.IsProcMacro(target.unit) {
			extVar := envIdent("EXTERN_PATH_", d.ExternCrateName)
			fmt.Fprintf(&script, "%s=$(ls \"$%s\"/lib/lib%s.* 2>/dev/null | head -n1)\n", extVar, varName, crateFileStem(target.unit.Target.Name))
			fmt.Fprintf(&script, "EXTERN_ARGS=\"$EXTERN_ARGS --extern %s=$%s\"\n", d.ExternCrateName, extVar)
		} else {
			fmt.Fprintf(&script, "EXTERN_ARGS=\"$EXTERN_ARGS --extern %s=$%s/lib/lib%s.rlib\"\n", d.ExternCrateName, varName, crateFileStem(target.unit.Target.Name))
		}
	}

	// Transitive closure of library search paths: every
	// non-direct member still needs its own buildInputs/env entry so its
	// store path reaches the shell as -L dependency=<path>.
	closure := transitiveLibraryClosure(directLibStarts, canon)
	closureEnvVars := map[string]string{}
	nextClosureIdx := 0
	for _, h := range closure {
		varName, ok := directVarByHash[h]
		if !ok {
			varName, ok = closureEnvVars[h]
			if !ok {
				varName = fmt.Sprintf("LIBPATH_%d", nextClosureIdx)
				nextClosureIdx++
				refExpr := "units." + emit.QuoteString(names[h])
				env.Set(varName, refExpr)
				buildInputs = append(buildInputs, refExpr)
				closureEnvVars[h] = varName
			}
		}
		fmt.Fprintf(&script, "LIB_ARGS=\"$LIB_ARGS -L dependency=$%s/lib\"\n", varName)
	}

	env.Set("RUSTC", fmt.Sprintf("\"${%s}/bin/rustc\"", toolchain))

	outPath, install := outputPathAndInstall(u, kind)
	if kind == outputProcMacro {
		env.Set("procMacroExt", "if pkgs.stdenv.isDarwin then \".dylib\" else if pkgs.stdenv.hostPlatform.isWindows then \".dll\" else \".so\"")
	}
	inv.AddOutput(outPath)

	// $out (and $procMacroExt) must expand at build time, so the output
	// path is double-quoted rather than passed through ShellQuote.
	fmt.Fprintf(&script, "$RUSTC %s $EXTERN_ARGS $LIB_ARGS $EXTRA_ARGS -o \"%s\"\n", invocation.RenderArgv(inv.Args()), inv.Output())

	drv := &emit.Derivation{
		Name:                  names[c.hash],
		Src:                   srcExpr,
		BuildInputs:           buildInputs,
		NativeBuildInputs:     []string{toolchain},
		NativeBuildInputsTail: "extraNativeBuildInputs",
		Env:                   env,
		BuildPhase:            script.String(),
		InstallPhase:          install,
		ContentAddressed:      opts.ContentAddressed,
		Meta: emit.NewAttrs().
			Set("pkg_id", emit.QuoteString(u.PkgID)).
			Set("mode", emit.QuoteString(string(u.Mode))),
	}
	return drv, nil
}

// outputPathAndInstall computes a unit's artifact path and the
// installPhase text that makes the output directory exist;
// the buildPhase itself writes the compiled artifact via rustc's -o.
func outputPathAndInstall(u graph.Unit, kind outputKind) (string, string) {
	switch kind {
	case outputBin, outputBuildScriptBin:
		name := u.Target.Name
		if kind == outputBuildScriptBin {
			name = "build-script-build"
		}
		return "$out/bin/" + name, "mkdir -p \"$out/bin\"\n"
	case outputProcMacro:
		return "$out/lib/lib" + crateFileStem(u.Target.Name) + "$procMacroExt", "mkdir -p \"$out/lib\"\n"
	default:
		return "$out/lib/lib" + crateFileStem(u.Target.Name) + ".rlib", "mkdir -p \"$out/lib\"\n"
	}
}

// buildScriptConsumptionSnippet renders the dependent-consumption
// shell logic: read a build script's run-derivation output files and
// append the derived flags, tolerating any file's absence (a script
// that never emitted a given directive never wrote the file).
func buildScriptConsumptionSnippet(runVar string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "if [ -f \"$%s/rustc-cfg\" ]; then while IFS= read -r v; do EXTRA_ARGS=\"$EXTRA_ARGS --cfg $v\"; done < \"$%s/rustc-cfg\"; fi\n", runVar, runVar)
	fmt.Fprintf(&b, "if [ -f \"$%s/rustc-check-cfg\" ]; then while IFS= read -r v; do EXTRA_ARGS=\"$EXTRA_ARGS --check-cfg $v\"; done < \"$%s/rustc-check-cfg\"; fi\n", runVar, runVar)
	fmt.Fprintf(&b, "if [ -f \"$%s/rustc-link-lib\" ]; then while IFS= read -r v; do EXTRA_ARGS=\"$EXTRA_ARGS -l $v\"; done < \"$%s/rustc-link-lib\"; fi\n", runVar, runVar)
	fmt.Fprintf(&b, "if [ -f \"$%s/rustc-link-search\" ]; then while IFS= read -r v; do EXTRA_ARGS=\"$EXTRA_ARGS -L $v\"; done < \"$%s/rustc-link-search\"; fi\n", runVar, runVar)
	fmt.Fprintf(&b, "if [ -f \"$%s/rustc-cdylib-link-arg\" ]; then while IFS= read -r v; do EXTRA_ARGS=\"$EXTRA_ARGS -C link-arg=$v\"; done < \"$%s/rustc-cdylib-link-arg\"; fi\n", runVar, runVar)
	fmt.Fprintf(&b, "if [ -f \"$%s/rustc-env\" ]; then while IFS= read -r kv; do export \"$kv\"; done < \"$%s/rustc-env\"; fi\n", runVar, runVar)
	fmt.Fprintf(&b, "export OUT_DIR=\"$%s/out-dir\"\n", runVar)
	return b.String()
}

// renderRunDerivation builds the run half of a build-script pair: it
// executes the compiled script under the deterministic environment of
// splits its stdout into the directive files dependents read.
func renderRunDerivation(compileUnit, runUnit graph.Unit, runName, compileName string, opts Options) *emit.Derivation {
	env := emit.NewAttrs()
	env.Set("COMPILE_DRV", "units."+emit.QuoteString(compileName))

	// CARGO_MANIFEST_DIR resolves to a store path, which must be
	// interpolated by Nix at the attribute-set level (a real env var by
	// the time the build starts) rather than spliced as "${src}" text
	// into the buildPhase string, where the ''${ escaping that protects
	// shell-side ${...} would turn it into a literal shell expansion of
	// an unset $src.
	manifestDirExpr := "${src}"
	srcExpr := "src"
	pkgName := ""
	pkgVersion := ""
	if id, err := identity.ParsePkgID(runUnit.PkgID); err == nil {
		pkgName = id.Name
		pkgVersion = id.Version
		if id.Source.Type == identity.Path {
			loc := identity.NewSourceLocation(id, compileUnit.Target.SrcPath)
			if remap := identity.Remap(loc.CrateRoot, opts.WorkspaceRoot); remap.InWorkspace {
				manifestDirExpr = remap.Expr
			}
		} else {
			srcExpr = fmt.Sprintf("(if vendorDir != null then \"${vendorDir}/%s-%s\" else src)", id.Name, id.Version)
			manifestDirExpr = "${" + srcExpr + "}"
		}
	}
	env.Set("CARGO_MANIFEST_DIR", fmt.Sprintf("\"%s\"", manifestDirExpr))

	runEnv := buildscript.RunEnv(buildscript.PkgIdentity{
		Name:        pkgName,
		Version:     pkgVersion,
		ManifestDir: "$CARGO_MANIFEST_DIR",
	}, runUnit, opts.TargetPlatform, opts.HostPlatform)
	delete(runEnv, "CARGO_MANIFEST_DIR") // already exported as a derivation attribute above

	script := buildscript.RenderRunScript("$COMPILE_DRV/bin/build-script-build", buildscript.SortedRunEnv(runEnv))

	return &emit.Derivation{
		Name:             runName,
		Src:              srcExpr,
		BuildInputs:      []string{"units." + emit.QuoteString(compileName)},
		Env:              env,
		BuildPhase:       script,
		ContentAddressed: opts.ContentAddressed,
		Meta: emit.NewAttrs().
			Set("pkg_id", emit.QuoteString(runUnit.PkgID)).
			Set("mode", emit.QuoteString(string(runUnit.Mode))),
	}
}
