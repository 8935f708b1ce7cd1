package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"rusttypes/internal/diag"
	"rusttypes/internal/types"
)

var (
	ErrNotScalar  = errors.New("value is not a scalar")
	ErrShortData  = errors.New("not enough bytes for value")
	ErrNoTagBytes = errors.New("enum has no discriminant bytes")
)

// ValueOptions control how raw bytes are decoded and shown.
type ValueOptions struct {
	// Format overrides the type's own display format.
	Format types.Format
	// Order is the target byte order; nil means little-endian.
	Order binary.ByteOrder
	// Reporter receives diagnostics for values that match no enumerator or
	// variant. Nil drops them.
	Reporter diag.Reporter
}

func (o ValueOptions) order() binary.ByteOrder {
	if o.Order == nil {
		return binary.LittleEndian
	}
	return o.Order
}

func (o ValueOptions) report(sev diag.Severity, code diag.Code, subject, msg string) {
	if o.Reporter == nil {
		return
	}
	diag.ReportAbout(o.Reporter, sev, code, subject, msg).Emit()
}

// Value renders a scalar of type id stored at the start of data.
func Value(r *types.Registry, id types.TypeID, data []byte, opts ValueOptions) (string, error) {
	tt, ok := r.Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidHandle, id)
	}
	if r.IsAggregate(id) {
		return "", fmt.Errorf("%w: %q", ErrNotScalar, r.Name(id))
	}
	if tt.Kind == types.KindTypedef {
		return Value(r, tt.Elem, data, opts)
	}

	size, _ := r.ByteSize(id)
	if uint64(len(data)) < size {
		return "", fmt.Errorf("%w: %q needs %d, have %d", ErrShortData, r.Name(id), size, len(data))
	}
	raw := data[:size]

	format := opts.Format
	if format == types.FormatDefault {
		format = r.Format(id)
		if tt.Kind == types.KindFunction {
			format = types.FormatPointer
		}
	}

	if tt.Kind == types.KindCLikeEnum && (format == types.FormatEnum || format == types.FormatDefault) {
		_, signed := r.IsInteger(tt.Elem)
		value := asUint64(decodeInt(raw, signed, opts.order()))
		if name, ok := r.CLikeName(id, value); ok {
			return r.Name(id) + "::" + name, nil
		}
		opts.report(diag.SevWarning, diag.TypeInvalidEnumValue, r.Name(id),
			fmt.Sprintf("value %d matches no enumerator", value))
		return fmt.Sprintf("(invalid enum value) %d", value), nil
	}

	switch format {
	case types.FormatBoolean:
		if decodeInt(raw, false, opts.order()).Sign() != 0 {
			return "true", nil
		}
		return "false", nil
	case types.FormatUnicode32:
		if size == 4 && tt.Kind == types.KindIntegral {
			return charLiteral(asUint64(decodeInt(raw, false, opts.order()))), nil
		}
		return bytesHex(raw), nil
	case types.FormatDecimal, types.FormatEnum:
		return decodeInt(raw, true, opts.order()).String(), nil
	case types.FormatUnsigned:
		return decodeInt(raw, false, opts.order()).String(), nil
	case types.FormatHex, types.FormatPointer:
		return hexText(decodeInt(raw, false, opts.order()), len(raw)), nil
	case types.FormatFloat:
		return floatText(raw, opts.order()), nil
	default:
		return bytesHex(raw), nil
	}
}

// decodeInt reads raw as a two's complement integer of any width.
func decodeInt(raw []byte, signed bool, order binary.ByteOrder) *big.Int {
	be := make([]byte, len(raw))
	copy(be, raw)
	if order == binary.LittleEndian {
		for i, j := 0, len(be)-1; i < j; i, j = i+1, j-1 {
			be[i], be[j] = be[j], be[i]
		}
	}
	v := new(big.Int).SetBytes(be)
	if signed && len(be) > 0 && be[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*len(be))))
	}
	return v
}

// asUint64 keeps the low 64 bits, so negative values wrap.
func asUint64(v *big.Int) uint64 {
	if v.IsInt64() {
		return uint64(v.Int64())
	}
	mask := new(big.Int).SetUint64(math.MaxUint64)
	return new(big.Int).And(v, mask).Uint64()
}

// hexText zero-pads to two digits per byte.
func hexText(v *big.Int, width int) string {
	digits := v.Text(16)
	if pad := 2*width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return "0x" + digits
}

func floatText(raw []byte, order binary.ByteOrder) string {
	switch len(raw) {
	case 4:
		return strconv.FormatFloat(float64(math.Float32frombits(order.Uint32(raw))), 'g', -1, 32)
	case 8:
		return strconv.FormatFloat(math.Float64frombits(order.Uint64(raw)), 'g', -1, 64)
	default:
		return bytesHex(raw)
	}
}

func charLiteral(v uint64) string {
	switch v {
	case '\n':
		return `'\n'`
	case '\r':
		return `'\r'`
	case '\t':
		return `'\t'`
	case '\\':
		return `'\\'`
	case 0:
		return `'\0'`
	case '\'':
		return `'\''`
	}
	if v >= 0x20 && v < 0x7f {
		return "'" + string(rune(v)) + "'"
	}
	return fmt.Sprintf(`'\u{%x}'`, v)
}

func bytesHex(raw []byte) string {
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}
