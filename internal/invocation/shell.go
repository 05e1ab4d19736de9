package invocation

import "strings"

// ShellQuote returns s unchanged when it is non-empty and holds no shell
// metacharacters; otherwise it wraps s in single quotes, escaping
// embedded single quotes as '\'' so the result is safe to splice into a
// POSIX shell command line verbatim.
func ShellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"$`\\|&;()<>*?[]{}~!#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// RenderArgv joins args into a single shell-quoted command-line string.
func RenderArgv(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = ShellQuote(a)
	}
	return strings.Join(quoted, " ")
}
