// Package diagnostic renders the driver's stderr diagnostics and picks
// the process exit code for a translator-ending error. It also carries
// the structured JSON/YAML envelope emitted instead of the plain stderr
// line when --format asks for a machine-readable surface.
package diagnostic

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ophidian-systems/unitgraph2nix/internal/graph"
)

// Exit codes of the driver binary.
const (
	ExitSuccess       = 0
	ExitMalformed     = 1
	ExitInternalError = 2
)

// ExitCodeFor maps a translator-ending error to the documented exit
// code. nil maps to ExitSuccess.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch err.(type) {
	case *graph.MalformedGraph, *graph.UnresolvedIndex, *InvalidSourceSpec:
		return ExitMalformed
	default:
		return ExitInternalError
	}
}

// InvalidSourceSpec reports a pkg_id that does not parse.
type InvalidSourceSpec struct {
	PkgID string
	Cause error
}

func (e *InvalidSourceSpec) Error() string {
	return fmt.Sprintf("invalid source spec in pkg_id %q: %v", e.PkgID, e.Cause)
}

func (e *InvalidSourceSpec) Unwrap() error { return e.Cause }

// EmissionError reports an I/O failure while writing the rendered
// derivation source to stdout.
type EmissionError struct {
	Cause error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("writing derivation source: %v", e.Cause)
}

func (e *EmissionError) Unwrap() error { return e.Cause }

// traceEnvVar gates verbose internal tracing so normal runs stay quiet.
const traceEnvVar = "UNITGRAPH2NIX_TRACE"

// Reporter writes recoverable-condition warnings to stderr: unknown
// directives and missing optional fields degrade gracefully with a
// warning. One Reporter per driver invocation; it carries a run ID,
// which Trace lines include so they can be correlated in a log
// aggregator even when interleaved with other processes' output. Warn
// lines do not include it.
type Reporter struct {
	RunID string
	trace bool
	out   *os.File
}

// NewReporter creates a Reporter writing to stderr with a fresh run ID.
func NewReporter() *Reporter {
	return &Reporter{
		RunID: uuid.NewString(),
		trace: os.Getenv(traceEnvVar) != "",
		out:   os.Stderr,
	}
}

// Warn reports a recoverable condition without aborting the translator.
func (r *Reporter) Warn(format string, args ...any) {
	fmt.Fprintf(r.out, "warning: %s\n", fmt.Sprintf(format, args...))
}

// Trace reports a verbose internal message, gated by UNITGRAPH2NIX_TRACE
// so normal runs stay quiet.
func (r *Reporter) Trace(format string, args ...any) {
	if !r.trace {
		return
	}
	fmt.Fprintf(r.out, "trace[%s]: %s\n", r.RunID, fmt.Sprintf(format, args...))
}

// Envelope is the structured diagnostic record emitted on a fatal error
// when --format requests json or its yaml alias, instead of the
// plain-text stderr line. It is never part of the derivation source
// itself — that text must stay byte-for-byte reproducible for identical
// input, which a run-specific UUID would break.
type Envelope struct {
	RunID   string `json:"run_id" yaml:"run_id"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// WriteEnvelope renders a fatal error as an Envelope in the requested
// format ("json" or "yaml") to w.
func WriteEnvelope(w *os.File, runID string, err error, format string) error {
	env := Envelope{RunID: runID, Kind: kindOf(err), Message: err.Error()}
	switch format {
	case "yaml":
		data, marshalErr := yaml.Marshal(env)
		if marshalErr != nil {
			return marshalErr
		}
		_, writeErr := w.Write(data)
		return writeErr
	default:
		_, writeErr := fmt.Fprintf(w, "{\"run_id\":%q,\"kind\":%q,\"message\":%q}\n", env.RunID, env.Kind, env.Message)
		return writeErr
	}
}

func kindOf(err error) string {
	switch err.(type) {
	case *graph.MalformedGraph:
		return "MalformedGraph"
	case *graph.UnresolvedIndex:
		return "UnresolvedIndex"
	case *InvalidSourceSpec:
		return "InvalidSourceSpec"
	case *EmissionError:
		return "EmissionError"
	default:
		return "InternalError"
	}
}
