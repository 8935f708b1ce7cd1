package types

import (
	"fmt"
	"sync/atomic"

	"fortio.org/safecast"

	"rusttypes/internal/source"
)

// DefaultPointerByteSize is used when Options leaves the pointer size unset.
const DefaultPointerByteSize = 8

var lastScope atomic.Uint32

// Options configure a Registry.
type Options struct {
	// PointerByteSize is the target's address size; function types take it
	// as their byte size.
	PointerByteSize uint64
	// Strings is shared with other consumers when non-nil.
	Strings *source.Interner
}

// Registry owns every type node created for one debug-info scope.
//
// Population is single-threaded. Once the builder is done the registry is
// read-only and may be queried from several goroutines.
type Registry struct {
	scope      uint32
	ptrSize    uint64
	strings    *source.Interner
	types      []Type
	aggregates []AggregateInfo
	clikes     []CLikeEnumInfo
	fns        []FnInfo
}

// NewRegistry constructs an empty registry with its own handle scope.
func NewRegistry(opts Options) *Registry {
	if opts.PointerByteSize == 0 {
		opts.PointerByteSize = DefaultPointerByteSize
	}
	if opts.Strings == nil {
		opts.Strings = source.NewInterner()
	}
	r := &Registry{
		scope:   lastScope.Add(1),
		ptrSize: opts.PointerByteSize,
		strings: opts.Strings,
		types:   make([]Type, 1, 64), // slot 0 is the invalid sentinel
	}
	r.aggregates = append(r.aggregates, AggregateInfo{})
	r.clikes = append(r.clikes, CLikeEnumInfo{})
	r.fns = append(r.fns, FnInfo{})
	return r
}

// Strings exposes the name interner.
func (r *Registry) Strings() *source.Interner { return r.strings }

// PointerByteSize reports the target address size.
func (r *Registry) PointerByteSize() uint64 { return r.ptrSize }

// Len counts created types.
func (r *Registry) Len() int { return len(r.types) - 1 }

// All returns every handle in creation order.
func (r *Registry) All() []TypeID {
	out := make([]TypeID, 0, r.Len())
	for i := 1; i < len(r.types); i++ {
		out = append(out, r.handle(i))
	}
	return out
}

// Owns reports whether id was issued by this registry and is in range.
func (r *Registry) Owns(id TypeID) bool {
	if r == nil || id == NoTypeID || id.scope() != r.scope {
		return false
	}
	idx := id.index()
	return idx != 0 && int(idx) < len(r.types)
}

// Lookup returns the descriptor for id.
func (r *Registry) Lookup(id TypeID) (Type, bool) {
	if !r.Owns(id) {
		return Type{}, false
	}
	return r.types[id.index()], true
}

// MustLookup panics when id is not owned by r.
func (r *Registry) MustLookup(id TypeID) Type {
	tt, ok := r.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("types: invalid handle %s", id))
	}
	return tt
}

// Kind reports the kind of id, KindInvalid when absent.
func (r *Registry) Kind(id TypeID) Kind {
	tt, ok := r.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Name returns the display name of id, "" when absent.
func (r *Registry) Name(id TypeID) string {
	tt, ok := r.Lookup(id)
	if !ok {
		return ""
	}
	s, _ := r.strings.Lookup(tt.Name)
	return s
}

func (r *Registry) handle(i int) TypeID {
	idx, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("type arena overflow: %w", err))
	}
	return makeTypeID(r.scope, idx)
}

func (r *Registry) add(t Type) TypeID {
	id := r.handle(len(r.types))
	r.types = append(r.types, t)
	return id
}

func (r *Registry) slot(n int, what string) uint32 {
	s, err := safecast.Conv[uint32](n - 1)
	if err != nil {
		panic(fmt.Errorf("%s overflow: %w", what, err))
	}
	return s
}

func (r *Registry) appendAggregate(info AggregateInfo) uint32 {
	r.aggregates = append(r.aggregates, info)
	return r.slot(len(r.aggregates), "aggregate info")
}

func (r *Registry) appendCLike(info CLikeEnumInfo) uint32 {
	r.clikes = append(r.clikes, info)
	return r.slot(len(r.clikes), "c-like enum info")
}

func (r *Registry) appendFn(info FnInfo) uint32 {
	r.fns = append(r.fns, info)
	return r.slot(len(r.fns), "fn info")
}
