package types

import (
	"maps"
	"slices"
)

// CLikeEnumInfo maps the values of a field-less enum to variant names.
type CLikeEnumInfo struct {
	Values map[uint64]string
}

func (r *Registry) clikeInfo(id TypeID) (*CLikeEnumInfo, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindCLikeEnum || int(tt.Payload) >= len(r.clikes) {
		return nil, false
	}
	return &r.clikes[tt.Payload], true
}

// CLikeName returns the variant name for value.
func (r *Registry) CLikeName(id TypeID, value uint64) (string, bool) {
	info, ok := r.clikeInfo(id)
	if !ok {
		return "", false
	}
	name, ok := info.Values[value]
	return name, ok
}

// CLikeValues lists the recorded values in ascending order.
func (r *Registry) CLikeValues(id TypeID) []uint64 {
	info, ok := r.clikeInfo(id)
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(info.Values))
}
