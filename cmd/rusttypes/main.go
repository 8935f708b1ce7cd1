package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rusttypes/internal/version"
)

// errDiagnostics is returned once error diagnostics have been printed; main
// exits non-zero without printing it again.
var errDiagnostics = errors.New("errors reported")

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "rusttypes",
		Short:         "Inspect Rust type graphs the way a debugger sees them",
		Long:          `rusttypes loads type graphs described in TOML or YAML fixtures and describes, lays out, decodes and emits C declarations for them`,
		Version:       version.Version,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return a.setup(cmd)
		},
	}

	root.AddCommand(
		newDescribeCmd(a),
		newCABICmd(a),
		newVariantCmd(a),
		newChildrenCmd(a),
		newCheckCmd(a),
		newQualnameCmd(a),
		newVersionCmd(a),
	)

	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress warnings and other non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("diag-format", "short", "diagnostic output format (short|pretty|json|yaml)")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to keep (0=unlimited)")
	pf.Int("jobs", 0, "max parallel workers when loading several fixtures (0=auto)")
	pf.Uint64("pointer-size", 0, "target pointer size in bytes when a fixture leaves it unset")
	pf.String("config", "", "path to rusttypes.toml (default: search upward from the working directory)")
	pf.Bool("cache", false, "reuse built registries from the on-disk cache")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 0, "ring buffer capacity for --trace-mode ring|both")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("exec-trace", "", "write a Go execution trace to this file")
	return root, a
}

// execute runs root and always releases the tracer, even when the command
// failed.
func execute(root *cobra.Command, a *app) error {
	defer a.teardown()
	return root.Execute()
}

func main() {
	root, a := newRootCmd()
	if err := execute(root, a); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- fd fits int
}
