package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Fixture documents
	FixInfo            Code = 1000
	FixParse           Code = 1001
	FixUnknownKind     Code = 1002
	FixUnknownType     Code = 1003
	FixDuplicateType   Code = 1004
	FixMissingField    Code = 1005
	FixBadValue        Code = 1006
	FixDuplicatePath   Code = 1007
	FixUnsupportedFile Code = 1008

	// Type model
	TypeInfo                   Code = 2000
	TypeInvalidHandle          Code = 2001
	TypeUnresolvedDiscriminant Code = 2002
	TypeInvalidEnumValue       Code = 2003
	TypeIncompleteDecl         Code = 2004
	TypeRecursiveContainment   Code = 2005
	TypeFieldOverflow          Code = 2006
	TypeDiscriminantOverflow   Code = 2007
	TypePointerSize            Code = 2008
	TypeIncomplete             Code = 2009
	TypeBuild                  Code = 2010
	TypeSizeOverflow           Code = 2011

	// Declaration contexts
	DeclInfo          Code = 3000
	DeclInvalidTree   Code = 3001
	DeclNotFound      Code = 3002
	DeclNotNamespaced Code = 3003

	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	ObsInfo Code = 6000
)

var codeDescription = map[Code]string{
	UnknownCode:                "Unknown error",
	FixInfo:                    "Fixture information",
	FixParse:                   "fixture does not parse",
	FixUnknownKind:             "unknown type kind",
	FixUnknownType:             "reference to an undeclared type",
	FixDuplicateType:           "type key declared twice",
	FixMissingField:            "required fixture key is missing",
	FixBadValue:                "fixture value out of range",
	FixDuplicatePath:           "declaration path declared twice",
	FixUnsupportedFile:         "unsupported fixture format",
	TypeInfo:                   "Type model information",
	TypeInvalidHandle:          "type handle is not owned by the registry",
	TypeUnresolvedDiscriminant: "discriminant matches no variant",
	TypeInvalidEnumValue:       "value matches no C-like enumerator",
	TypeIncompleteDecl:         "type has no C declaration",
	TypeRecursiveContainment:   "recursive value type has infinite size",
	TypeFieldOverflow:          "field extends past the end of its aggregate",
	TypeDiscriminantOverflow:   "discriminant extends past the end of its enum",
	TypePointerSize:            "pointer size disagrees with the target",
	TypeIncomplete:             "aggregate was never finished",
	TypeBuild:                  "type could not be built",
	TypeSizeOverflow:           "size or offset does not fit in 64 bits",
	DeclInfo:                   "Declaration information",
	DeclInvalidTree:            "declaration tree is inconsistent",
	DeclNotFound:               "no declaration at path",
	DeclNotNamespaced:          "path crosses a non-namespace item",
	IOLoadFileError:            "I/O load file error",
	IOCacheError:               "type cache unavailable",
	ObsInfo:                    "Observability information",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("FIX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
