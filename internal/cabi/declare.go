package cabi

import (
	"fmt"
	"strings"

	"rusttypes/internal/types"
)

func (s *Session) declare(id types.TypeID, declarator, path string) (string, error) {
	tt, ok := s.reg.Lookup(id)
	if !ok {
		return "", &IncompleteTypeError{Type: id, Path: path}
	}
	switch tt.Kind {
	case types.KindBool:
		return attach("bool", declarator), nil

	case types.KindIntegral:
		return attach(integerToken(tt.Signed, tt.Size), declarator), nil

	case types.KindFloat:
		if tt.Size == 4 {
			return attach("float", declarator), nil
		}
		return attach("double", declarator), nil

	case types.KindCLikeEnum, types.KindTypedef:
		return s.declare(tt.Elem, declarator, path)

	case types.KindPointer:
		return s.declarePointer(tt.Elem, declarator, path)

	case types.KindArray:
		return s.declare(tt.Elem, fmt.Sprintf("%s[%d]", declarator, tt.Count), path+"[]")

	case types.KindFunction:
		return s.declareFunction(id, declarator, path)

	case types.KindTuple, types.KindStruct, types.KindUnion, types.KindEnum:
		tag, err := s.declareAggregate(id, tt.Kind, path)
		if err != nil {
			return "", err
		}
		return attach(tag, declarator), nil

	default:
		return "", &IncompleteTypeError{Type: id, Path: path}
	}
}

// integerToken names the clang predefined integer macro for a width.
func integerToken(signed bool, byteSize uint64) string {
	if signed {
		return fmt.Sprintf("__INT%d_TYPE__", byteSize*8)
	}
	return fmt.Sprintf("__UINT%d_TYPE__", byteSize*8)
}

// attach joins a type name and a declarator, keeping leading pointer stars on
// the type side: "T* p", "T** p", "T (*p)[3]".
func attach(typeName, declarator string) string {
	if declarator == "" {
		return typeName
	}
	rest := strings.TrimLeft(declarator, "*")
	stars := declarator[:len(declarator)-len(rest)]
	if rest == "" {
		return typeName + stars
	}
	return typeName + stars + " " + rest
}

func (s *Session) declarePointer(pointee types.TypeID, declarator, path string) (string, error) {
	if !s.reg.Owns(pointee) {
		return "", &IncompleteTypeError{Type: pointee, Path: "*" + path}
	}
	target := s.reg.Canonical(pointee)
	switch {
	case s.reg.IsFunction(target):
		// function types already render as function pointers
		return s.declare(pointee, declarator, "*"+path)
	case s.reg.IsVoid(target):
		return attach("void", "*"+declarator), nil
	case s.reg.IsArray(target):
		return s.declare(pointee, "(*"+declarator+")", "*"+path)
	default:
		return s.declare(pointee, "*"+declarator, "*"+path)
	}
}

func (s *Session) declareFunction(id types.TypeID, declarator, path string) (string, error) {
	var args []string
	for i := range s.reg.FunctionArgCount(id) {
		arg, _ := s.reg.FunctionArg(id, i)
		text, err := s.declare(arg, "", fmt.Sprintf("%s(arg %d)", path, i))
		if err != nil {
			return "", err
		}
		args = append(args, text)
	}
	inner := "(*" + declarator + ")(" + strings.Join(args, ", ") + ")"

	ret, _ := s.reg.FunctionReturn(id)
	if ret == types.NoTypeID || s.reg.IsVoid(s.reg.Canonical(ret)) {
		return "void " + inner, nil
	}
	return s.declare(ret, inner, path+"(return)")
}

func (s *Session) declareAggregate(id types.TypeID, kind types.Kind, path string) (string, error) {
	tag, fresh := s.Tag(id)
	if !fresh {
		return tag, nil
	}

	keyword := "struct"
	if kind == types.KindUnion {
		keyword = "union"
	}
	var def strings.Builder
	def.WriteString(keyword + " " + tag + "{ ")

	fields := s.reg.Fields(id)
	if kind == types.KindEnum && len(fields) > 1 {
		if off, size, ok := s.reg.DiscriminantLocation(id); ok && off == 0 {
			def.WriteString(integerToken(true, uint64(size)) + " __discr; ")
		}
	}
	unnamed := 0
	for _, f := range fields {
		name := s.reg.FieldName(f)
		if name == "" {
			name = fmt.Sprintf("__%d", unnamed)
			unnamed++
		} else {
			name = "_" + name
		}
		text, err := s.declare(f.Type, name, s.reg.Name(id)+"."+name)
		if err != nil {
			return "", err
		}
		def.WriteString(text + "; ")
	}
	def.WriteString("};\n")
	s.defs.WriteString(def.String())
	return tag, nil
}
