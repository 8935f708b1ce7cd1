package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a type-graph fixture. TOML and YAML
// share it.
type Document struct {
	PointerSize uint64     `toml:"pointer_size" yaml:"pointer_size"`
	Types       []TypeSpec `toml:"types" yaml:"types"`
	Namespaces  []string   `toml:"namespaces" yaml:"namespaces"`
	Decls       []DeclSpec `toml:"decls" yaml:"decls"`
}

// TypeSpec describes one type node. Other specs refer to it by Key, which
// defaults to Name.
type TypeSpec struct {
	Key    string `toml:"key" yaml:"key"`
	Name   string `toml:"name" yaml:"name"`
	Kind   string `toml:"kind" yaml:"kind"`
	Size   uint64 `toml:"size" yaml:"size"`
	Signed bool   `toml:"signed" yaml:"signed"`

	// Target is the pointee, array element, typedef target or C-like enum
	// underlying type.
	Target string `toml:"target" yaml:"target"`
	Length uint64 `toml:"length" yaml:"length"`

	HasDiscriminant bool   `toml:"has_discriminant" yaml:"has_discriminant"`
	TupleKind       string `toml:"tuple_kind" yaml:"tuple_kind"`
	DiscrOffset     uint32 `toml:"discr_offset" yaml:"discr_offset"`
	DiscrSize       uint32 `toml:"discr_size" yaml:"discr_size"`

	Fields       []FieldSpec       `toml:"fields" yaml:"fields"`
	Variants     []VariantSpec     `toml:"variants" yaml:"variants"`
	Values       map[string]string `toml:"values" yaml:"values"`
	Return       string            `toml:"return" yaml:"return"`
	Args         []string          `toml:"args" yaml:"args"`
	TemplateArgs []string          `toml:"template_args" yaml:"template_args"`

	line uint32
}

// RefKey is the name other specs use for this type.
func (s *TypeSpec) RefKey() string {
	if s.Key != "" {
		return s.Key
	}
	return s.Name
}

// UnmarshalYAML records the line of each entry for diagnostics.
func (s *TypeSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain TypeSpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = TypeSpec(p)
	s.line = uint32(max(value.Line, 0)) // #nosec G115 -- yaml lines are small
	return nil
}

type FieldSpec struct {
	Name   string `toml:"name" yaml:"name"`
	Type   string `toml:"type" yaml:"type"`
	Offset uint64 `toml:"offset" yaml:"offset"`
}

// VariantSpec is an enum variant. Exactly one of Discr and Default is set.
type VariantSpec struct {
	Name    string  `toml:"name" yaml:"name"`
	Type    string  `toml:"type" yaml:"type"`
	Offset  uint64  `toml:"offset" yaml:"offset"`
	Discr   *uint64 `toml:"discr" yaml:"discr"`
	Default bool    `toml:"default" yaml:"default"`
}

// DeclSpec places a declaration at a "::"-separated path.
type DeclSpec struct {
	Path    string `toml:"path" yaml:"path"`
	Mangled string `toml:"mangled" yaml:"mangled"`
}

// Syntax is the serialization a fixture uses.
type Syntax uint8

const (
	SyntaxUnknown Syntax = iota
	SyntaxTOML
	SyntaxYAML
)

func (s Syntax) String() string {
	switch s {
	case SyntaxTOML:
		return "toml"
	case SyntaxYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseError carries the 1-based line a decoder complained about, 0 when
// unknown.
type ParseError struct {
	Line uint32
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	tomlTypesHeader = regexp.MustCompile(`(?m)^[ \t]*\[\[[ \t]*types[ \t]*\]\]`)
	yamlErrLine     = regexp.MustCompile(`line (\d+)`)
)

// tomlErrorLine maps a toml parse error to the line holding the offending
// token. An unexpected newline is reported on the line after it, and the
// result never points past the last line of content.
func tomlErrorLine(content []byte, perr toml.ParseError) uint32 {
	line := max(perr.Position.Line, 0)
	if line > 1 && strings.Contains(perr.Error(), `found '\n'`) {
		line--
	}
	return uint32(min(line, lineCount(content))) // #nosec G115 -- clamped to the line count
}

// lineCount counts lines, including a last line without a trailing newline.
func lineCount(content []byte) int {
	n := bytes.Count(content, []byte{'\n'})
	if len(content) > 0 && content[len(content)-1] != '\n' {
		n++
	}
	return max(n, 1)
}

// Decode parses content in the given syntax.
func Decode(content []byte, syntax Syntax) (*Document, error) {
	var doc Document
	switch syntax {
	case SyntaxTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(content)).Decode(&doc); err != nil {
			var perr toml.ParseError
			if errors.As(err, &perr) {
				return nil, &ParseError{Line: tomlErrorLine(content, perr), Err: err}
			}
			return nil, &ParseError{Err: err}
		}
		// TOML has no node positions; [[types]] headers give them back.
		for i, loc := range tomlTypesHeader.FindAllIndex(content, -1) {
			if i >= len(doc.Types) {
				break
			}
			doc.Types[i].line = uint32(bytes.Count(content[:loc[0]], []byte{'\n'}) + 1) // #nosec G115
		}
	case SyntaxYAML:
		if err := yaml.Unmarshal(content, &doc); err != nil {
			line := uint32(0)
			if m := yamlErrLine.FindStringSubmatch(err.Error()); m != nil {
				if n, convErr := strconv.ParseUint(m[1], 10, 32); convErr == nil {
					line = uint32(n)
				}
			}
			return nil, &ParseError{Line: line, Err: err}
		}
	default:
		return nil, ErrUnsupportedSyntax
	}
	return &doc, nil
}
