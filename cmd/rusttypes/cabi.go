package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rusttypes/internal/cabi"
	"rusttypes/internal/diag"
	"rusttypes/internal/trace"
	"rusttypes/internal/types"
)

func newCABICmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cabi <fixture>",
		Short: "Emit C declarations for fixture types",
		Long:  `Emit a compilable C snippet declaring a variable of each requested type, preceded by the struct and union definitions it needs`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCABI(cmd, args[0])
		},
	}
	cmd.Flags().StringSlice("type", nil, "type key to declare (repeatable)")
	cmd.Flags().String("var", "v", "variable name; numbered when several types are declared")
	cmd.Flags().String("tag-prefix", "", "prefix for synthesized aggregate tags (default from config or "+cabi.DefaultTagPrefix+")")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *app) runCABI(cmd *cobra.Command, path string) error {
	keys, err := cmd.Flags().GetStringSlice("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	varname, err := cmd.Flags().GetString("var")
	if err != nil {
		return fmt.Errorf("failed to get var flag: %w", err)
	}
	prefix := a.TagPrefix
	if cmd.Flags().Changed("tag-prefix") {
		if prefix, err = cmd.Flags().GetString("tag-prefix"); err != nil {
			return fmt.Errorf("failed to get tag-prefix flag: %w", err)
		}
	}

	f, ok := a.loadOne(cmd.Context(), path)
	if !ok {
		return a.finish(cmd)
	}
	sp, _ := trace.BeginCtx(cmd.Context(), trace.ScopePhase, "cabi")
	defer sp.End("")
	phase := a.timer.Begin("cabi")

	session := cabi.NewSession(f.Registry, cabi.Options{TagPrefix: prefix})
	var decls []string
	for i, key := range keys {
		id, ok := a.lookup(f, key)
		if !ok {
			continue
		}
		name := varname
		if len(keys) > 1 {
			name += strconv.Itoa(i)
		}
		decl, err := session.Declare(id, name)
		if err != nil {
			reportEmitError(a, key, err)
			continue
		}
		decls = append(decls, decl)
	}
	a.timer.End(phase, fmt.Sprintf("%d tag(s)", session.Len()))

	if len(decls) > 0 {
		out := cmd.OutOrStdout()
		writeString(out, session.Definitions())
		for _, d := range decls {
			writeString(out, d+";\n")
		}
	}
	return a.finish(cmd)
}

func reportEmitError(a *app, key string, err error) {
	code := diag.TypeBuild
	var incomplete *cabi.IncompleteTypeError
	switch {
	case errors.As(err, &incomplete):
		code = diag.TypeIncomplete
	case errors.Is(err, types.ErrInvalidHandle):
		code = diag.TypeInvalidHandle
	}
	diag.ReportAbout(a.reporter(), diag.SevError, code, key, err.Error()).Emit()
}
