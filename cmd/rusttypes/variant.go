package main

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rusttypes/internal/diag"
	"rusttypes/internal/fixture"
	"rusttypes/internal/format"
	"rusttypes/internal/trace"
	"rusttypes/internal/types"
)

func newVariantCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variant <fixture>",
		Short: "Resolve which enum variant a discriminant or raw value selects",
		Long: `Resolve the active variant of an enum from either a discriminant (--value)
or the raw bytes of a value (--bytes, hex). With --bytes the whole value is rendered too`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVariant(cmd, args[0])
		},
	}
	cmd.Flags().String("type", "", "enum type key")
	cmd.Flags().String("value", "", "discriminant value (decimal, 0x hex, or negative)")
	cmd.Flags().String("bytes", "", "raw value bytes in hex, little-endian target")
	cmd.Flags().Bool("big-endian", false, "decode --bytes as a big-endian target")
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("value", "bytes")
	cmd.MarkFlagsOneRequired("value", "bytes")
	return cmd
}

func (a *app) runVariant(cmd *cobra.Command, path string) error {
	key, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	valueStr, err := cmd.Flags().GetString("value")
	if err != nil {
		return fmt.Errorf("failed to get value flag: %w", err)
	}
	bytesStr, err := cmd.Flags().GetString("bytes")
	if err != nil {
		return fmt.Errorf("failed to get bytes flag: %w", err)
	}
	bigEndian, err := cmd.Flags().GetBool("big-endian")
	if err != nil {
		return fmt.Errorf("failed to get big-endian flag: %w", err)
	}

	f, ok := a.loadOne(cmd.Context(), path)
	if !ok {
		return a.finish(cmd)
	}
	id, ok := a.lookup(f, key)
	if !ok {
		return a.finish(cmd)
	}
	sp, _ := trace.BeginCtx(cmd.Context(), trace.ScopePhase, "variant")
	defer sp.End("")

	opts := format.ValueOptions{Reporter: a.reporter()}
	if bigEndian {
		opts.Order = binary.BigEndian
	}
	var data []byte
	if bytesStr != "" {
		data, err = hex.DecodeString(strings.ReplaceAll(strings.TrimPrefix(bytesStr, "0x"), " ", ""))
		if err != nil {
			return fmt.Errorf("--bytes: %w", err)
		}
	} else {
		data, err = discriminantBytes(f, id, valueStr, opts)
		if err != nil {
			diag.ReportAbout(a.reporter(), diag.SevError, diag.FixBadValue, key, err.Error()).Emit()
			return a.finish(cmd)
		}
	}

	v, err := format.Variant(f.Registry, id, data, opts)
	if err != nil {
		code := diag.TypeBuild
		switch {
		case errors.Is(err, types.ErrNotEnum):
			code = diag.FixBadValue
		case errors.Is(err, format.ErrShortData), errors.Is(err, format.ErrNoTagBytes):
			code = diag.TypeUnresolvedDiscriminant
		}
		diag.ReportAbout(a.reporter(), diag.SevError, code, key, err.Error()).Emit()
		return a.finish(cmd)
	}

	out := cmd.OutOrStdout()
	writeString(out, v.String()+"\n")
	if v.Resolved && !a.Quiet {
		writeString(out, fmt.Sprintf("  index %d, payload %s at offset %d\n", v.Index, f.Registry.Name(v.Type), v.Offset))
	}
	if bytesStr != "" && v.Resolved {
		rendered, err := format.Render(f.Registry, id, data, opts)
		if err != nil {
			diag.ReportAbout(a.reporter(), diag.SevWarning, diag.TypeBuild, key, err.Error()).Emit()
		} else {
			writeString(out, rendered+"\n")
		}
	}
	return a.finish(cmd)
}

// discriminantBytes lays value out at the enum's discriminant location in a
// zeroed buffer the size of the enum.
func discriminantBytes(f *fixture.Fixture, id types.TypeID, value string, opts format.ValueOptions) ([]byte, error) {
	r := f.Registry
	if r.Kind(id) != types.KindEnum {
		return nil, fmt.Errorf("%w: %q", types.ErrNotEnum, r.Name(id))
	}
	v, err := parseDiscriminant(value)
	if err != nil {
		return nil, err
	}
	size, _ := r.ByteSize(id)
	offset, width, ok := r.DiscriminantLocation(id)
	if !ok || width == 0 {
		return make([]byte, size), nil
	}
	end := uint64(offset) + uint64(width)
	buf := make([]byte, max(size, end))
	order := opts.Order
	if order == nil {
		order = binary.LittleEndian
	}
	field := buf[offset:end]
	switch width {
	case 1:
		field[0] = byte(v)
	case 2:
		order.PutUint16(field, uint16(v)) // #nosec G115 -- truncated to the tag width
	case 4:
		order.PutUint32(field, uint32(v)) // #nosec G115 -- truncated to the tag width
	case 8:
		order.PutUint64(field, v)
	default:
		return nil, fmt.Errorf("unsupported discriminant width %d", width)
	}
	return buf, nil
}

func parseDiscriminant(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 0, 64)
		return uint64(v), err // #nosec G115 -- two's complement by intent
	}
	return strconv.ParseUint(s, 0, 64)
}
