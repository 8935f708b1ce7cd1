package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rusttypes/internal/decl"
	"rusttypes/internal/diag"
)

func newQualnameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qualname <fixture> [path...]",
		Short: "Resolve declaration paths, or print the declaration tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQualname(cmd, args[0], args[1:])
		},
	}
	return cmd
}

func (a *app) runQualname(cmd *cobra.Command, path string, paths []string) error {
	f, ok := a.loadOne(cmd.Context(), path)
	if !ok {
		return a.finish(cmd)
	}
	t := f.Decls
	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		var b strings.Builder
		writeTree(&b, t, t.Root(), 0)
		writeString(out, b.String())
		return a.finish(cmd)
	}
	for _, p := range paths {
		item, ok := t.Resolve(p)
		if !ok {
			diag.ReportAbout(a.reporter(), diag.SevError, diag.DeclNotFound, p, "no declaration or namespace at this path").Emit()
			continue
		}
		writeString(out, describeItem(t, item)+"\n")
	}
	return a.finish(cmd)
}

func describeItem(t *decl.Tree, item decl.Item) string {
	switch item.Kind {
	case decl.ItemNamespace:
		return "namespace " + t.QualifiedName(item.Context)
	case decl.ItemDecl:
		s := "decl " + t.DeclQualifiedName(item.Decl)
		if m := t.DeclMangledName(item.Decl); m != "" {
			s += fmt.Sprintf(" [%s]", m)
		}
		return s
	default:
		return item.Kind.String()
	}
}

func writeTree(b *strings.Builder, t *decl.Tree, ctx decl.ContextID, depth int) {
	for _, item := range t.Children(ctx) {
		b.WriteString(strings.Repeat("  ", depth))
		switch item.Kind {
		case decl.ItemNamespace:
			b.WriteString(t.Name(item.Context) + "::\n")
			writeTree(b, t, item.Context, depth+1)
		case decl.ItemDecl:
			b.WriteString(t.DeclName(item.Decl))
			if m := t.DeclMangledName(item.Decl); m != "" {
				b.WriteString(" [" + m + "]")
			}
			b.WriteByte('\n')
		}
	}
}
