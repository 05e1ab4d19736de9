package identity

import (
	"path/filepath"
	"strings"
)

// SourceLocation is the source-location view of a unit: crate_root is
// the crate's root directory (derived from the nearest enclosing "src"
// segment of target.src_path, or its directory if none is found);
// EntryPoint is target.src_path relative to crate_root.
type SourceLocation struct {
	Name       string
	Version    string
	SourceType SourceType
	CrateRoot  string
	EntryPoint string
}

// NewSourceLocation builds a SourceLocation from a parsed pkg_id and the
// unit's target.src_path.
func NewSourceLocation(id PkgID, srcPath string) SourceLocation {
	root, entry := splitCrateRoot(srcPath)
	return SourceLocation{
		Name:       id.Name,
		Version:    id.Version,
		SourceType: id.Source.Type,
		CrateRoot:  root,
		EntryPoint: entry,
	}
}

// splitCrateRoot derives a crate root from an entry-point src_path by
// walking up to the nearest "src" directory's parent, falling back to the
// entry point's own directory when no "src" segment is present.
func splitCrateRoot(srcPath string) (root, entry string) {
	dir := filepath.Dir(srcPath)
	parts := strings.Split(filepath.ToSlash(dir), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == "src" {
			root = strings.Join(parts[:i], "/")
			if root == "" {
				root = "/"
			}
			rel, err := filepath.Rel(root, srcPath)
			if err == nil {
				return root, filepath.ToSlash(rel)
			}
		}
	}
	return dir, filepath.Base(srcPath)
}

// RemapResult is the outcome of remapping an absolute path against a
// workspace root.
type RemapResult struct {
	// Expr is the "${src}/<relative>" Nix expression when InWorkspace is
	// true; empty otherwise.
	Expr        string
	InWorkspace bool
}

// Remap produces "${src}/<relative>" where <relative> is absPath relative
// to workspaceRoot. For paths outside the workspace (registry/git sources
// materialized at nondeterministic absolute paths) InWorkspace is false
// and the caller must refer to the path via the owning unit's derivation
// instead.
func Remap(absPath, workspaceRoot string) RemapResult {
	rel, err := filepath.Rel(workspaceRoot, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return RemapResult{InWorkspace: false}
	}
	return RemapResult{Expr: "${src}/" + filepath.ToSlash(rel), InWorkspace: true}
}
