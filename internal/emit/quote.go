// Package emit renders the Nix-expression text of derivations: quoted
// string literals, multiline `''...''` blocks, and ordered attribute
// sets.
package emit

import "strings"

// QuoteString renders s as a double-quoted Nix string literal, escaping
// backslash, double quote, newline, carriage return, tab, and the
// `${` interpolation sigil.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '$':
			b.WriteByte('$')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return escapeDollarBrace(b.String())
}

// escapeDollarBrace rewrites a already-quoted string's literal "${"
// sequences to "\${" so they are not interpreted as interpolation.
// Done as a post-pass since QuoteString must still pass through a bare
// trailing "$" unescaped (only "${" is special in Nix).
func escapeDollarBrace(s string) string {
	return strings.ReplaceAll(s, "${", `\${`)
}

// MultilineBlock renders s as a Nix `''...''` indented string, suitable
// for embedding generated shell scripts verbatim. Literal `''` sequences
// are escaped to `'''`, and `${` interpolation sigils are escaped to
// `''${` per Nix's indented-string escaping rules.
func MultilineBlock(s string) string {
	escaped := strings.ReplaceAll(s, "''", "'''")
	escaped = strings.ReplaceAll(escaped, "${", "''${")
	var b strings.Builder
	b.WriteString("''\n")
	b.WriteString(escaped)
	if !strings.HasSuffix(escaped, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("''")
	return b.String()
}
