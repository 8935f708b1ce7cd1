package source

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// StringID identifies an interned name.
type StringID uint32

// NoStringID is reserved for the empty string.
const NoStringID StringID = 0

// Interner deduplicates type, field and namespace names.
//
// Names are stored in NFC form: rustc emits identifiers already normalized,
// but names synthesized by tools may not be, and lookups must agree.
type Interner struct {
	byID  []string
	index map[string]StringID
}

// NewInterner returns an interner with NoStringID mapped to "".
func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern returns the ID for s, inserting it on first use.
func (i *Interner) Intern(s string) StringID {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	if id, ok := i.index[s]; ok {
		return id
	}
	raw, err := safecast.Conv[uint32](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("string interner overflow: %w", err))
	}
	id := StringID(raw)
	cpy := string([]byte(s))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Find reports the ID of s without inserting it.
func (i *Interner) Find(s string) (StringID, bool) {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	id, ok := i.index[s]
	return id, ok
}

// Lookup returns the string for id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics when id is unknown.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("source: invalid string ID")
	}
	return s
}

// Has reports whether id was issued by this interner.
func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len counts interned strings, NoStringID included.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot copies all strings in ID order.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
