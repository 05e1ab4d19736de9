// Package identity computes the stable per-unit identity hash and
// parses pkg_id strings into their constituent name/version/source.
package identity

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"

	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
)

// Hash computes the 16-hex-character (64-bit) identity hash of a unit from
// its intrinsic properties only: pkg_id, target name/crate types, sorted
// features, the hashed profile fields, mode and platform. Dependencies are
// deliberately excluded — identity must stay intrinsic so that
// duplicate logical units reached via distinct dependency paths dedupe to
// one derivation instead of producing mismatched SVHs at link time.
func Hash(u graph.Unit) string {
	sum := sha256.Sum256(canonicalBytes(u))
	return hex.EncodeToString(sum[:8])
}

// canonicalBytes serializes the hashed tuple in a fixed field order with
// NUL-separated tokens, so no map iteration order can leak into the
// digest.
func canonicalBytes(u graph.Unit) []byte {
	var buf bytes.Buffer
	write := func(s string) {
		buf.WriteString(s)
		buf.WriteByte(0)
	}

	write(u.PkgID)
	write(u.Target.Name)
	for _, ct := range u.Target.CrateTypes {
		write(ct)
	}
	write("\x1e") // crate-types terminator

	features := append([]string(nil), u.Features...)
	sort.Strings(features)
	for _, f := range features {
		write(f)
	}
	write("\x1e") // features terminator

	write(u.Profile.Name)
	write(u.Profile.OptLevel)
	write(u.Profile.Lto.NormalizeLto())
	write(u.Profile.DebugInfo.NormalizeDebugInfo())
	write(u.Profile.Panic.String())
	write(strconv.FormatBool(u.Profile.DebugAssertions))
	write(strconv.FormatBool(u.Profile.OverflowChecks))
	if u.Profile.CodegenUnits != nil {
		write(strconv.Itoa(*u.Profile.CodegenUnits))
	} else {
		write("")
	}

	write(string(u.Mode))
	if u.Platform != nil {
		write(*u.Platform)
	} else {
		write("")
	}

	return buf.Bytes()
}
