package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rusttypes/internal/format"
	"rusttypes/internal/trace"
)

func newDescribeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <fixture> [type...]",
		Short: "Print Rust-like descriptions of fixture types",
		Long:  `Print each named type (every type when none is named) as a Rust-like declaration with its fields`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDescribe(cmd, args[0], args[1:])
		},
	}
	cmd.Flags().Int("indent", 2, "spaces per indentation level")
	cmd.Flags().Bool("tabs", false, "indent with tabs")
	cmd.Flags().Bool("kinds", false, "prefix each description with its key and kind")
	return cmd
}

func (a *app) runDescribe(cmd *cobra.Command, path string, keys []string) error {
	indent, err := cmd.Flags().GetInt("indent")
	if err != nil {
		return fmt.Errorf("failed to get indent flag: %w", err)
	}
	tabs, err := cmd.Flags().GetBool("tabs")
	if err != nil {
		return fmt.Errorf("failed to get tabs flag: %w", err)
	}
	kinds, err := cmd.Flags().GetBool("kinds")
	if err != nil {
		return fmt.Errorf("failed to get kinds flag: %w", err)
	}

	f, ok := a.loadOne(cmd.Context(), path)
	if !ok {
		return a.finish(cmd)
	}
	sp, _ := trace.BeginCtx(cmd.Context(), trace.ScopePhase, "describe")
	defer sp.End("")
	phase := a.timer.Begin("describe")

	if len(keys) == 0 {
		keys = f.Keys()
	}
	opt := format.Options{IndentWidth: indent, UseTabs: tabs}
	out := cmd.OutOrStdout()
	for _, key := range keys {
		id, ok := a.lookup(f, key)
		if !ok {
			continue
		}
		if kinds {
			writeString(out, fmt.Sprintf("// %s (%s)\n", key, f.Registry.Kind(id)))
		}
		writeString(out, format.DescribeWith(f.Registry, id, opt)+"\n")
	}
	a.timer.End(phase, fmt.Sprintf("%d type(s)", len(keys)))
	return a.finish(cmd)
}
