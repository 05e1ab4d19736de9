// unitgraph2nix reads the JSON unit graph cargo emits with
// `--unit-graph -Z unstable-options` on stdin and writes a callable Nix
// expression of per-unit derivations on stdout.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ophidian-systems/unitgraph2nix/internal/cliconfig"
	"github.com/ophidian-systems/unitgraph2nix/internal/diagnostic"
	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
	"github.com/ophidian-systems/unitgraph2nix/internal/manifest"
	"github.com/ophidian-systems/unitgraph2nix/internal/schema"
	"github.com/ophidian-systems/unitgraph2nix/internal/wiring"
)

func main() {
	rep := diagnostic.NewReporter()

	opts, err := cliconfig.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(diagnostic.ExitMalformed)
	}

	if err := run(opts, rep); err != nil {
		fail(opts, rep, err)
	}
}

func run(opts cliconfig.Options, rep *diagnostic.Reporter) error {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	guard, err := schema.New()
	if err != nil {
		return err
	}
	if err := guard.Validate(raw); err != nil {
		return &graph.MalformedGraph{Field: "$", Reason: err.Error()}
	}
	rep.Trace("schema guard accepted %d bytes", len(raw))

	g, err := graph.Parse(raw)
	if err != nil {
		return err
	}
	rep.Trace("parsed %d units, %d roots", len(g.Units), len(g.Roots))

	if opts.ManifestHints != "" {
		m, err := manifest.Load(opts.ManifestHints)
		if err != nil {
			rep.Warn("ignoring --manifest-hints: %v", err)
		} else {
			manifest.Apply(g, m)
		}
	}

	doc, err := wiring.Wire(g, wiring.Options{
		WorkspaceRoot:    opts.WorkspaceRoot,
		ContentAddressed: opts.ContentAddressed,
		CrossCompile:     opts.CrossCompile,
		HostPlatform:     opts.HostPlatform,
		TargetPlatform:   opts.TargetPlatform,
	})
	if err != nil {
		return err
	}

	var out string
	switch opts.Format {
	case cliconfig.FormatJSON:
		out, err = doc.RenderJSON()
	case cliconfig.FormatYAML:
		out, err = doc.RenderYAML()
	default:
		out = doc.Render()
	}
	if err != nil {
		return err
	}

	if _, err := io.WriteString(os.Stdout, out); err != nil {
		return &diagnostic.EmissionError{Cause: err}
	}
	return nil
}

func fail(opts cliconfig.Options, rep *diagnostic.Reporter, err error) {
	switch opts.Format {
	case cliconfig.FormatJSON, cliconfig.FormatYAML:
		if envErr := diagnostic.WriteEnvelope(os.Stderr, rep.RunID, err, string(opts.Format)); envErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(diagnostic.ExitCodeFor(err))
}
