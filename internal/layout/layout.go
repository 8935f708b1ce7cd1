package layout

import (
	"rusttypes/internal/types"
)

// TypeLayout is the checked layout of a type. Sizes come from the debug info;
// the engine verifies them instead of recomputing them.
type TypeLayout struct {
	Size uint64

	// Aggregate-only:
	FieldOffsets []uint64
	FieldSizes   []uint64

	// Tagged-enum only:
	DiscrOffset uint64
	DiscrSize   uint64
}

// LayoutEngine checks the layouts recorded in a Registry.
type LayoutEngine struct {
	Target Target
	Types  *types.Registry

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, reg *types.Registry) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		Types:  reg,
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		stack: nil,
		index: make(map[types.TypeID]int, 32),
	}
}

// LayoutOf checks and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	if e == nil || e.Types == nil {
		return TypeLayout{}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	layout, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return layout, err
	}
	return layout, nil
}

func (e *LayoutEngine) layoutOf(t types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	canon := e.Types.Canonical(t)
	if !e.Types.Owns(canon) {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrIncomplete, Type: t, Name: e.Types.Name(t)}
	}
	if cached, ok := e.cache.get(canon); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[canon]; ok {
		cycle := make([]string, 0, len(state.stack)-idx+1)
		for _, id := range state.stack[idx:] {
			cycle = append(cycle, e.Types.Name(id))
		}
		cycle = append(cycle, e.Types.Name(canon))
		err := &LayoutError{
			Kind:  LayoutErrRecursiveUnsized,
			Type:  canon,
			Name:  e.Types.Name(canon),
			Cycle: cycle,
		}
		e.cache.put(canon, &cacheEntry{Err: err})
		return TypeLayout{}, err
	}

	state.index[canon] = len(state.stack)
	state.stack = append(state.stack, canon)
	layout, err := e.computeLayout(canon, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, canon)

	e.cache.put(canon, &cacheEntry{Layout: layout, Err: err})
	return layout, err
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TypeID) (uint64, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// FieldOffset returns the byte offset of an aggregate field.
func (e *LayoutEngine) FieldOffset(aggregate types.TypeID, fieldIdx int) (uint64, error) {
	l, err := e.LayoutOf(aggregate)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}

// Validate checks every type in the registry and returns each distinct
// problem once, in creation order of the type that first exposed it.
func (e *LayoutEngine) Validate() []*LayoutError {
	if e == nil || e.Types == nil {
		return nil
	}
	seen := make(map[*LayoutError]struct{})
	var out []*LayoutError
	for _, id := range e.Types.All() {
		_, err := e.LayoutOf(id)
		if err == nil {
			continue
		}
		lerr, ok := err.(*LayoutError)
		if !ok {
			continue
		}
		if _, dup := seen[lerr]; dup {
			continue
		}
		seen[lerr] = struct{}{}
		out = append(out, lerr)
	}
	return out
}
