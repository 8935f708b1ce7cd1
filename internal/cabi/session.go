// Package cabi renders registry types as C declarations with the same memory
// layout, for a C-based expression evaluator.
//
// A discriminant is only represented when it sits at offset zero of a tagged
// enum with more than one variant. A tag stored elsewhere in the layout is
// omitted, so the emitted struct is narrower than what the evaluator may need
// to read it.
package cabi

import (
	"strconv"
	"strings"

	"rusttypes/internal/types"
)

// DefaultTagPrefix starts every synthesized struct or union tag.
const DefaultTagPrefix = "__rust_"

// Options tune a Session.
type Options struct {
	TagPrefix string
}

// Session accumulates tag names and definitions for one emission. It is not
// safe for concurrent use.
type Session struct {
	reg    *types.Registry
	prefix string
	tags   map[types.TypeID]string
	minted []types.TypeID // tagged aggregates in tag order
	next   int
	defs   strings.Builder
}

// NewSession starts an empty emission over reg.
func NewSession(reg *types.Registry, opts Options) *Session {
	if opts.TagPrefix == "" {
		opts.TagPrefix = DefaultTagPrefix
	}
	return &Session{
		reg:    reg,
		prefix: opts.TagPrefix,
		tags:   make(map[types.TypeID]string),
	}
}

// Tag returns the tag for an aggregate, minting one on first use. fresh is
// true when the tag was just created.
func (s *Session) Tag(id types.TypeID) (tag string, fresh bool) {
	if tag, ok := s.tags[id]; ok {
		return tag, false
	}
	tag = s.prefix + strconv.Itoa(s.next)
	s.next++
	s.tags[id] = tag
	s.minted = append(s.minted, id)
	return tag, true
}

// Declare renders a declarator for varname of type id. Definitions needed by
// it are appended to the session buffer. On error the session is left as it
// was before the call.
func (s *Session) Declare(id types.TypeID, varname string) (string, error) {
	defs, minted, next := s.defs.Len(), len(s.minted), s.next
	decl, err := s.declare(id, varname, s.reg.Name(id))
	if err != nil {
		s.rollback(defs, minted, next)
		return "", err
	}
	return decl, nil
}

// rollback drops the definitions and tags added after the given marks.
func (s *Session) rollback(defs, minted, next int) {
	if s.defs.Len() > defs {
		kept := s.defs.String()[:defs]
		s.defs.Reset()
		s.defs.WriteString(kept)
	}
	for _, id := range s.minted[minted:] {
		delete(s.tags, id)
	}
	s.minted = s.minted[:minted]
	s.next = next
}

// Definitions returns the accumulated struct and union definitions, in the
// order they must appear before any declarator.
func (s *Session) Definitions() string { return s.defs.String() }

// Len reports how many distinct aggregates have been tagged.
func (s *Session) Len() int { return len(s.tags) }

// Emit renders a single declaration with a fresh session.
func Emit(reg *types.Registry, id types.TypeID, varname string, opts Options) (decl, defs string, err error) {
	s := NewSession(reg, opts)
	decl, err = s.Declare(id, varname)
	if err != nil {
		return "", "", err
	}
	return decl, s.Definitions(), nil
}

// Source joins definitions and the declarator into one compilable snippet.
func Source(decl, defs string) string {
	return defs + decl + ";\n"
}
