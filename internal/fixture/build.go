package fixture

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"rusttypes/internal/diag"
	"rusttypes/internal/source"
	"rusttypes/internal/trace"
	"rusttypes/internal/types"
)

// kind names accepted in fixtures beyond types.Kind spellings
const (
	kindChar = "char"
	kindVoid = "void"
)

// builder drives a Registry from a Document in debug-info order: shells and
// leaves, derived types, members, then sealing with enums last.
type builder struct {
	ctx    context.Context
	fix    *Fixture
	reg    *types.Registry
	doc    *Document
	file   *source.File
	rep    *countingReporter
	kinds  map[string]string // key -> kind
	specs  map[string]*TypeSpec
	shells []*TypeSpec // aggregates in document order
}

type countingReporter struct {
	next   diag.Reporter
	errors int
	total  int
}

func (c *countingReporter) Report(d diag.Diagnostic) {
	c.total++
	if d.Severity >= diag.SevError {
		c.errors++
	}
	if c.next != nil {
		c.next.Report(d)
	}
}

func (b *builder) span(spec *TypeSpec) source.Span {
	if b.file == nil {
		return source.Span{}
	}
	if spec == nil || spec.line == 0 {
		return source.Span{File: b.file.ID}
	}
	return b.file.LineSpan(spec.line)
}

func (b *builder) errorf(spec *TypeSpec, code diag.Code, format string, args ...any) {
	rb := diag.ReportError(b.rep, code, b.span(spec), fmt.Sprintf(format, args...))
	if spec != nil {
		rb.WithSubject(spec.RefKey())
	}
	rb.Emit()
}

func (b *builder) warnf(spec *TypeSpec, code diag.Code, format string, args ...any) {
	rb := diag.ReportWarning(b.rep, code, b.span(spec), fmt.Sprintf(format, args...))
	if spec != nil {
		rb.WithSubject(spec.RefKey())
	}
	rb.Emit()
}

func (b *builder) run() {
	pending := b.declare()
	b.derive(pending)
	b.members()
	b.seal()
	b.declarations()
}

// declare creates leaves and aggregate shells, returning derived specs.
func (b *builder) declare() []*TypeSpec {
	var pending []*TypeSpec
	for i := range b.doc.Types {
		spec := &b.doc.Types[i]
		key := spec.RefKey()
		if key == "" {
			b.errorf(spec, diag.FixMissingField, "type entry %d has neither name nor key", i+1)
			continue
		}
		if _, dup := b.specs[key]; dup {
			b.errorf(spec, diag.FixDuplicateType, "type %q declared twice", key)
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(spec.Kind))
		b.specs[key] = spec
		b.kinds[key] = kind

		switch kind {
		case "bool":
			b.bind(spec, b.reg.CreateBool(nameOr(spec.Name, "bool")))
		case kindChar:
			b.bind(spec, b.reg.CreateIntegral(nameOr(spec.Name, "char"), false, 4, true))
		case kindVoid:
			b.bind(spec, b.reg.CreateVoid())
		case "integral":
			if !validIntSize(spec.Size) {
				b.errorf(spec, diag.FixBadValue, "integral %q has size %d, want 1, 2, 4, 8 or 16", key, spec.Size)
				continue
			}
			if spec.Name == "" {
				b.bind(spec, b.reg.CreateIntrinsicIntegral(spec.Signed, spec.Size))
			} else {
				b.bind(spec, b.reg.CreateIntegral(spec.Name, spec.Signed, spec.Size, false))
			}
		case "float":
			if types.FloatKindForSize(spec.Size) == types.FloatBogus {
				b.errorf(spec, diag.FixBadValue, "float %q has size %d, want 2, 4, 8 or 16", key, spec.Size)
				continue
			}
			b.bind(spec, b.reg.CreateFloat(nameOr(spec.Name, fmt.Sprintf("f%d", spec.Size*8)), spec.Size))
		case "struct":
			b.bind(spec, b.reg.CreateStruct(spec.Name, spec.Size, spec.HasDiscriminant))
			b.shells = append(b.shells, spec)
		case "tuple":
			var id types.TypeID
			switch strings.ToLower(spec.TupleKind) {
			case "":
				id = b.reg.CreateTuple(spec.Name, spec.Size, spec.HasDiscriminant)
			case "anonymous":
				id = b.reg.CreateTupleKind(spec.Name, spec.Size, spec.HasDiscriminant, types.TupleAnonymous)
			case "named":
				id = b.reg.CreateTupleKind(spec.Name, spec.Size, spec.HasDiscriminant, types.TupleNamed)
			default:
				b.errorf(spec, diag.FixBadValue, "tuple_kind %q is neither anonymous nor named", spec.TupleKind)
				continue
			}
			b.bind(spec, id)
			b.shells = append(b.shells, spec)
		case "union":
			b.bind(spec, b.reg.CreateUnion(spec.Name, spec.Size))
			b.shells = append(b.shells, spec)
		case "enum":
			if !validDiscrSize(spec) {
				b.errorf(spec, diag.FixBadValue, "discr_size %d is not 1, 2, 4 or 8", spec.DiscrSize)
				continue
			}
			b.bind(spec, b.reg.CreateEnum(spec.Name, spec.Size, spec.DiscrOffset, spec.DiscrSize))
			b.shells = append(b.shells, spec)
		case "pointer", "array", "typedef", "clike-enum", "function":
			pending = append(pending, spec)
		default:
			b.errorf(spec, diag.FixUnknownKind, "unknown kind %q", spec.Kind)
			delete(b.specs, key)
		}
	}
	return pending
}

func (b *builder) bind(spec *TypeSpec, id types.TypeID) {
	b.fix.bind(spec.RefKey(), id)
	trace.Point(trace.FromContext(b.ctx), trace.ScopeType, "type:"+spec.RefKey(), b.kinds[spec.RefKey()], trace.CurrentSpan(b.ctx))
}

// validDiscrSize accepts the widths a discriminant value can be read from.
// An enum with at most one variant needs no tag and may leave it zero.
func validDiscrSize(spec *TypeSpec) bool {
	switch spec.DiscrSize {
	case 1, 2, 4, 8:
		return true
	case 0:
		return len(spec.Variants) <= 1
	default:
		return false
	}
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func validIntSize(n uint64) bool {
	switch n {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}

// deps lists the keys a derived spec needs before it can be created.
func deps(spec *TypeSpec, kind string) []string {
	var out []string
	add := func(k string) {
		if k != "" {
			out = append(out, k)
		}
	}
	switch kind {
	case "function":
		add(spec.Return)
		for _, a := range spec.Args {
			add(a)
		}
		for _, a := range spec.TemplateArgs {
			add(a)
		}
	default:
		add(spec.Target)
	}
	return out
}

// derive creates pointer, array, typedef, C-like enum and function types once
// everything they reference exists. Whatever is left references unknown keys
// or forms a cycle of derived types.
func (b *builder) derive(pending []*TypeSpec) {
	for len(pending) > 0 {
		var next []*TypeSpec
		for _, spec := range pending {
			ready := true
			for _, d := range deps(spec, b.kinds[spec.RefKey()]) {
				if _, ok := b.fix.Type(d); !ok {
					ready = false
					break
				}
			}
			if !ready {
				next = append(next, spec)
				continue
			}
			b.createDerived(spec)
		}
		if len(next) == len(pending) {
			b.reportUnresolved(next)
			return
		}
		pending = next
	}
}

func (b *builder) reportUnresolved(left []*TypeSpec) {
	for _, spec := range left {
		for _, d := range deps(spec, b.kinds[spec.RefKey()]) {
			if _, ok := b.fix.Type(d); ok {
				continue
			}
			dep, declared := b.specs[d]
			switch {
			case !declared:
				b.errorf(spec, diag.FixUnknownType, "%q references unknown type %q", spec.RefKey(), d)
			case slices.Contains(left, dep):
				b.errorf(spec, diag.FixUnknownType, "%q depends on %q through a cycle of derived types", spec.RefKey(), d)
			default:
				b.errorf(spec, diag.FixUnknownType, "%q references %q, which could not be built", spec.RefKey(), d)
			}
			break
		}
	}
}

func (b *builder) createDerived(spec *TypeSpec) {
	target, _ := b.fix.Type(spec.Target)
	switch b.kinds[spec.RefKey()] {
	case "pointer":
		size := spec.Size
		if size == 0 {
			size = b.reg.PointerByteSize()
		}
		name := spec.Name
		if name == "" && target.IsValid() {
			name = "*mut " + b.reg.Name(target)
		}
		b.bind(spec, b.reg.CreatePointer(name, target, size))
	case "array":
		if !target.IsValid() {
			b.errorf(spec, diag.FixMissingField, "array %q has no element type", spec.RefKey())
			return
		}
		b.bind(spec, b.reg.CreateArray(target, spec.Length))
	case "typedef":
		if !target.IsValid() {
			b.errorf(spec, diag.FixMissingField, "typedef %q has no target", spec.RefKey())
			return
		}
		b.bind(spec, b.reg.CreateTypedef(spec.Name, target))
	case "clike-enum":
		if integer, _ := b.reg.IsInteger(target); !integer {
			b.errorf(spec, diag.FixBadValue, "C-like enum %q needs an integral target", spec.RefKey())
			return
		}
		values, ok := b.clikeValues(spec)
		if !ok {
			return
		}
		b.bind(spec, b.reg.CreateCLikeEnum(spec.Name, target, values))
	case "function":
		ret, _ := b.fix.Type(spec.Return)
		b.bind(spec, b.reg.CreateFunction(spec.Name, ret, b.lookupAll(spec.Args), b.lookupAll(spec.TemplateArgs)))
	}
}

func (b *builder) lookupAll(keys []string) []types.TypeID {
	out := make([]types.TypeID, 0, len(keys))
	for _, k := range keys {
		id, _ := b.fix.Type(k)
		out = append(out, id)
	}
	return out
}

// clikeValues parses enumerator keys. Negative values wrap to their two's
// complement so they compare equal to sign-extended reads.
func (b *builder) clikeValues(spec *TypeSpec) (map[uint64]string, bool) {
	out := make(map[uint64]string, len(spec.Values))
	for _, raw := range slices.Sorted(maps.Keys(spec.Values)) {
		v, err := parseEnumerator(raw)
		if err != nil {
			b.errorf(spec, diag.FixBadValue, "enumerator value %q: %v", raw, err)
			return nil, false
		}
		out[v] = spec.Values[raw]
	}
	return out, true
}

func parseEnumerator(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 0, 64)
		return uint64(v), err // #nosec G115 -- wraps by intent
	}
	return strconv.ParseUint(s, 0, 64)
}

// members adds fields, variants and template arguments to every shell.
func (b *builder) members() {
	for _, spec := range b.shells {
		id, _ := b.fix.Type(spec.RefKey())
		if b.kinds[spec.RefKey()] == "enum" {
			if len(spec.Fields) > 0 {
				b.warnf(spec, diag.FixBadValue, "enum %q lists fields; use variants", spec.RefKey())
			}
			b.variants(spec, id)
		} else {
			for _, f := range spec.Fields {
				ft, ok := b.fix.Type(f.Type)
				if !ok {
					b.errorf(spec, diag.FixUnknownType, "field %q of %q references unknown type %q", f.Name, spec.RefKey(), f.Type)
					continue
				}
				if err := b.reg.AddField(id, f.Name, ft, f.Offset); err != nil {
					b.errorf(spec, diag.TypeBuild, "field %q: %v", f.Name, err)
				}
			}
		}
		for _, key := range spec.TemplateArgs {
			arg, ok := b.fix.Type(key)
			if !ok {
				b.errorf(spec, diag.FixUnknownType, "template argument %q of %q is unknown", key, spec.RefKey())
				continue
			}
			if err := b.reg.AddTemplateArgument(id, arg); err != nil {
				b.errorf(spec, diag.TypeBuild, "template argument %q: %v", key, err)
			}
		}
	}
}

func (b *builder) variants(spec *TypeSpec, id types.TypeID) {
	for _, v := range spec.Variants {
		vt, ok := b.fix.Type(v.Type)
		if !ok {
			b.errorf(spec, diag.FixUnknownType, "variant %q of %q references unknown type %q", v.Name, spec.RefKey(), v.Type)
			continue
		}
		var d types.Discriminant
		switch {
		case v.Default && v.Discr != nil:
			b.errorf(spec, diag.FixBadValue, "variant %q has both a discriminant and the default role", v.Name)
			continue
		case v.Default:
			d.Default = true
		case v.Discr != nil:
			d.Value = *v.Discr
		default:
			b.errorf(spec, diag.FixMissingField, "variant %q of %q has no discriminant", v.Name, spec.RefKey())
			continue
		}
		if err := b.reg.AddEnumVariant(id, v.Name, vt, v.Offset, d); err != nil {
			b.errorf(spec, diag.TypeBuild, "variant %q: %v", v.Name, err)
		}
	}
}

// seal finishes structs, tuples and unions before enums so variant layouts
// are complete when enums drop their discriminants.
func (b *builder) seal() {
	for _, enums := range []bool{false, true} {
		for _, spec := range b.shells {
			if (b.kinds[spec.RefKey()] == "enum") != enums {
				continue
			}
			id, _ := b.fix.Type(spec.RefKey())
			if err := b.reg.FinishAggregateInitialization(id); err != nil {
				b.errorf(spec, diag.TypeBuild, "finishing %q: %v", spec.RefKey(), err)
			}
		}
	}
}

func (b *builder) declarations() {
	for _, ns := range b.doc.Namespaces {
		if _, err := declareNamespace(b.fix.Decls, ns); err != nil {
			b.errorf(nil, diag.FixBadValue, "namespace %q: %v", ns, err)
			continue
		}
		b.fix.namespaces = append(b.fix.namespaces, ns)
	}
	seen := make(map[string]bool, len(b.doc.Decls))
	for _, d := range b.doc.Decls {
		if seen[d.Path] {
			b.warnf(nil, diag.FixDuplicatePath, "declaration %q listed twice", d.Path)
			continue
		}
		seen[d.Path] = true
		if _, err := declarePath(b.fix.Decls, d.Path, d.Mangled); err != nil {
			b.errorf(nil, diag.FixBadValue, "declaration %q: %v", d.Path, err)
			continue
		}
		b.fix.decls = append(b.fix.decls, d)
	}
	if err := b.fix.Decls.Validate(); err != nil {
		b.errorf(nil, diag.DeclInvalidTree, "%v", err)
	}
}
