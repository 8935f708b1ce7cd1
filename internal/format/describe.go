package format

import "rusttypes/internal/types"

// Describe renders a type description. Aggregates list their fields one per
// line:
//
//	struct Point {
//	  x: i32,
//	  y: i32
//	}
//
// Anonymous tuples drop the keyword and name, and every other type prints its
// name.
func Describe(r *types.Registry, id types.TypeID) string {
	return DescribeWith(r, id, Options{})
}

// DescribeWith is Describe with explicit layout options.
func DescribeWith(r *types.Registry, id types.TypeID, opt Options) string {
	tt, ok := r.Lookup(id)
	if !ok {
		return ""
	}
	if !tt.Kind.IsAggregate() {
		return r.Name(id)
	}

	w := NewWriter(opt)
	tag, opener, closer := aggregateSyntax(r, id, tt.Kind)
	w.WriteString(tag)
	if name := r.Name(id); tag != "" && name != "" {
		w.WriteString(name + " ")
	}
	w.WriteString(opener)

	fields := r.Fields(id)
	if len(fields) == 0 {
		w.WriteString(closer)
		return w.String()
	}
	w.IndentPush()
	for i, f := range fields {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		w.Newline()
		if name := r.FieldName(f); name != "" {
			w.WriteString(name + ": ")
		}
		w.WriteString(r.Name(f.Type))
	}
	w.IndentPop()
	w.Newline()
	w.WriteString(closer)
	return w.String()
}

func aggregateSyntax(r *types.Registry, id types.TypeID, kind types.Kind) (tag, opener, closer string) {
	switch kind {
	case types.KindTuple:
		if tk, _ := r.TupleKindOf(id); tk == types.TupleAnonymous {
			return "", "(", ")"
		}
		return "struct ", "(", ")"
	case types.KindUnion:
		return "union ", "{", "}"
	case types.KindEnum:
		return "enum ", "{", "}"
	default:
		return "struct ", "{", "}"
	}
}
