// Package cliconfig holds the driver's CLI surface, built with the
// stdlib flag package rather than a third-party flag library.
package cliconfig

import (
	"flag"
	"fmt"
	"io"
)

// Format is the -f/--format option, plus an undocumented yaml alias
// for YAML-ingesting log pipelines.
type Format string

const (
	FormatNix  Format = "nix"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Options is the parsed CLI surface.
type Options struct {
	WorkspaceRoot    string
	ContentAddressed bool
	CrossCompile     bool
	HostPlatform     string
	TargetPlatform   string
	Format           Format
	ManifestHints    string
}

// Parse builds Options from argv (excluding the program name), writing
// usage text to errOut on a parse failure.
func Parse(args []string, errOut io.Writer) (Options, error) {
	fs := flag.NewFlagSet("unitgraph2nix", flag.ContinueOnError)
	fs.SetOutput(errOut)

	opts := Options{Format: FormatNix}

	var format string
	fs.StringVar(&opts.WorkspaceRoot, "workspace-root", "", "absolute workspace root for src_path remapping")
	fs.StringVar(&opts.WorkspaceRoot, "w", "", "shorthand for --workspace-root")
	fs.BoolVar(&opts.ContentAddressed, "content-addressed", false, "emit content-addressed attributes on every derivation")
	fs.BoolVar(&opts.CrossCompile, "cross-compile", false, "split host/target toolchain")
	fs.StringVar(&opts.HostPlatform, "host-platform", "", "host platform triple")
	fs.StringVar(&opts.TargetPlatform, "target-platform", "", "target platform triple")
	fs.StringVar(&format, "format", "nix", "output format: nix or json")
	fs.StringVar(&format, "f", "nix", "shorthand for --format")
	fs.StringVar(&opts.ManifestHints, "manifest-hints", "", "optional workspace Cargo.toml to recover profile overrides missing from the unit graph")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	switch Format(format) {
	case FormatNix, FormatJSON, FormatYAML:
		opts.Format = Format(format)
	default:
		return Options{}, fmt.Errorf("unsupported --format %q (want nix or json)", format)
	}

	if opts.CrossCompile && (opts.HostPlatform == "" || opts.TargetPlatform == "") {
		return Options{}, fmt.Errorf("--cross-compile requires both --host-platform and --target-platform")
	}

	return opts, nil
}
