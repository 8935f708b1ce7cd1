package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rusttypes/internal/format"
	"rusttypes/internal/types"
)

func newChildrenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "children <fixture>",
		Short: "List the children a debugger would show for a value of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChildren(cmd, args[0])
		},
	}
	cmd.Flags().String("type", "", "type key")
	cmd.Flags().String("name", "value", "name of the expanded value, used for pointer children")
	cmd.Flags().Bool("transparent-pointers", false, "expand pointers to aggregates in place")
	cmd.Flags().Bool("ignore-bounds", false, "allow indexing past array bounds")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *app) runChildren(cmd *cobra.Command, path string) error {
	key, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return fmt.Errorf("failed to get name flag: %w", err)
	}
	transparent, err := cmd.Flags().GetBool("transparent-pointers")
	if err != nil {
		return fmt.Errorf("failed to get transparent-pointers flag: %w", err)
	}
	ignoreBounds, err := cmd.Flags().GetBool("ignore-bounds")
	if err != nil {
		return fmt.Errorf("failed to get ignore-bounds flag: %w", err)
	}

	f, ok := a.loadOne(cmd.Context(), path)
	if !ok {
		return a.finish(cmd)
	}
	id, ok := a.lookup(f, key)
	if !ok {
		return a.finish(cmd)
	}
	opts := types.ChildOptions{
		TransparentPointers: transparent,
		IgnoreArrayBounds:   ignoreBounds,
		ParentName:          name,
	}
	if f.Registry.NumChildren(id) == 0 {
		if !a.Quiet {
			writeString(cmd.OutOrStdout(), fmt.Sprintf("%s has no children\n", f.Registry.Name(id)))
		}
		return a.finish(cmd)
	}
	writeString(cmd.OutOrStdout(), format.ChildTable(f.Registry, id, opts))
	return a.finish(cmd)
}
