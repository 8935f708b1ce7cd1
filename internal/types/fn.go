package types

// FnInfo stores the signature of a function type.
type FnInfo struct {
	Return       TypeID
	Args         []TypeID
	TemplateArgs []TypeID
}

func (r *Registry) fnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindFunction || int(tt.Payload) >= len(r.fns) {
		return nil, false
	}
	return &r.fns[tt.Payload], true
}

// FunctionReturn reports the return type of a function.
func (r *Registry) FunctionReturn(id TypeID) (TypeID, bool) {
	info, ok := r.fnInfo(id)
	if !ok {
		return NoTypeID, false
	}
	return info.Return, true
}

// FunctionArgCount returns the number of arguments, or -1 when id is not a function.
func (r *Registry) FunctionArgCount(id TypeID) int {
	info, ok := r.fnInfo(id)
	if !ok {
		return -1
	}
	return len(info.Args)
}

// FunctionArg returns the argument at idx.
func (r *Registry) FunctionArg(id TypeID, idx int) (TypeID, bool) {
	info, ok := r.fnInfo(id)
	if !ok || idx < 0 || idx >= len(info.Args) {
		return NoTypeID, false
	}
	return info.Args[idx], true
}
