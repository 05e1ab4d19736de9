package identity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
)

// SourceType distinguishes where a package's source lives.
type SourceType int

const (
	Path SourceType = iota
	Registry
	Git
)

func (t SourceType) String() string {
	switch t {
	case Path:
		return "path"
	case Registry:
		return "registry"
	case Git:
		return "git"
	default:
		return "unknown"
	}
}

// SourceSpec is the parsed form of the "(<prefix>+<rest>)" suffix of a
// pkg_id.
type SourceSpec struct {
	Type SourceType
	// Root holds the crate's filesystem root for Path sources (the
	// "file://" scheme stripped off); empty for Registry/Git.
	Root string
	// Raw holds the untouched remainder after the source-type prefix,
	// for Registry ("<url>") and Git ("<url>?rev=...#...") sources.
	Raw string
}

// PkgID is a parsed `"<name> <version> (<source>)"` package identifier.
type PkgID struct {
	Name    string
	Version string
	Source  SourceSpec
}

var pkgIDPattern = regexp.MustCompile(`^(\S+) (\S+) \((.+)\)$`)

// ParsePkgID parses a pkg_id string of the form
// `"<name> <version> (<prefix>+<rest>)"` where prefix is one of
// path, registry, git. Returns a plain error naming the offending
// string — callers needing the fatal
// InvalidSourceSpec classification should wrap this error.
func ParsePkgID(s string) (PkgID, error) {
	m := pkgIDPattern.FindStringSubmatch(s)
	if m == nil {
		return PkgID{}, fmt.Errorf("invalid pkg_id: %q", s)
	}
	name, version, source := m[1], m[2], m[3]

	idx := strings.IndexByte(source, '+')
	if idx < 0 {
		return PkgID{}, fmt.Errorf("invalid pkg_id source (missing '+'): %q", s)
	}
	prefix, rest := source[:idx], source[idx+1:]

	var spec SourceSpec
	switch prefix {
	case "path":
		spec = SourceSpec{Type: Path, Root: strings.TrimPrefix(rest, "file://")}
	case "registry":
		spec = SourceSpec{Type: Registry, Raw: rest}
	case "git":
		spec = SourceSpec{Type: Git, Raw: rest}
	default:
		return PkgID{}, fmt.Errorf("unknown pkg_id source prefix %q in %q", prefix, s)
	}

	return PkgID{Name: name, Version: version, Source: spec}, nil
}

// DerivationName computes the `<crate-name>-<version>-<hash>` derivation
// key for a unit.
func DerivationName(u graph.Unit) (string, error) {
	id, err := ParsePkgID(u.PkgID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", id.Name, id.Version, Hash(u)), nil
}
