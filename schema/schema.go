package schema

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Type is the declared type of a Property
type Type int

const (
	TypeUnknown Type = iota
	TypeString
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeDatetime
	TypeDate
	TypeValue
	TypeObject
	TypeObjectArray
	TypeValueArray
	TypeGeometry
)

var typeNames = [...]string{
	TypeUnknown:     "UNKNOWN",
	TypeString:      "STRING",
	TypeInteger:     "INTEGER",
	TypeFloat:       "FLOAT",
	TypeBoolean:     "BOOLEAN",
	TypeDatetime:    "DATETIME",
	TypeDate:        "DATE",
	TypeValue:       "VALUE",
	TypeObject:      "OBJECT",
	TypeObjectArray: "OBJECT_ARRAY",
	TypeValueArray:  "VALUE_ARRAY",
	TypeGeometry:    "GEOMETRY",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	s := strings.ToUpper(string(bytes.TrimSpace(b)))
	for i, n := range typeNames {
		if s == n {
			*t = Type(i)
			return nil
		}
	}
	return errors.Errorf("unknown property type %q", b)
}

// IsScalar reports whether values of t are emitted as single values
func (t Type) IsScalar() bool {
	switch t {
	case TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeDatetime, TypeDate, TypeValue:
		return true
	}
	return false
}

// Property is a node of the schema tree
type Property struct {
	Name       string      `yaml:"name"`
	Type       Type        `yaml:"type"`
	ValueType  Type        `yaml:"valueType,omitempty"`
	Properties []*Property `yaml:"properties,omitempty"`

	parent   *Property
	children map[string]*Property
	locals   map[string]*Property
}

func (p *Property) IsSpatial() bool    { return p.Type == TypeGeometry }
func (p *Property) IsObject() bool     { return p.Type == TypeObject || p.Type == TypeObjectArray }
func (p *Property) IsArray() bool      { return p.Type == TypeObjectArray || p.Type == TypeValueArray }
func (p *Property) IsValueArray() bool { return p.Type == TypeValueArray }

// ScalarType returns the type of the values emitted for p: the element type
// of a value array, the declared type of a scalar and TypeString otherwise.
func (p *Property) ScalarType() Type {
	switch {
	case p.Type == TypeValueArray && p.ValueType != TypeUnknown:
		return p.ValueType
	case p.Type.IsScalar():
		return p.Type
	}
	return TypeString
}

// Parent returns the enclosing property, nil at the root
func (p *Property) Parent() *Property { return p.parent }

// Child returns the child matching the path segment seg
func (p *Property) Child(seg string) (*Property, bool) {
	if c, ok := p.children[seg]; ok {
		return c, true
	}
	c, ok := p.locals[localName(seg)]
	return c, ok
}

func localName(s string) string {
	if i := strings.IndexByte(s, ':'); i > -1 {
		return s[i+1:]
	}
	return s
}

func (p *Property) index() error {
	p.children = make(map[string]*Property, len(p.Properties))
	p.locals = make(map[string]*Property, len(p.Properties))
	for _, c := range p.Properties {
		if c == nil || c.Name == "" {
			return errors.Errorf("property %q has a child without a name", p.Name)
		}
		if _, dup := p.children[c.Name]; dup {
			return errors.Errorf("property %q declares %q twice", p.Name, c.Name)
		}
		c.parent = p
		p.children[c.Name] = c
		if _, taken := p.locals[localName(c.Name)]; !taken {
			p.locals[localName(c.Name)] = c
		}
		if err := c.index(); err != nil {
			return err
		}
	}
	return nil
}

// Schema is an indexed feature type declaration
type Schema struct {
	root *Property
}

// New indexes the property tree rooted at root.
func New(root *Property) (*Schema, error) {
	if root == nil {
		return nil, errors.New("nil schema root")
	}
	if root.Type == TypeUnknown {
		root.Type = TypeObject
	}
	if err := root.index(); err != nil {
		return nil, err
	}
	return &Schema{root: root}, nil
}

// MustNew is New, panicking on error.
func MustNew(root *Property) *Schema {
	s, err := New(root)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse reads a YAML schema document from r
func Parse(r io.Reader) (*Schema, error) {
	root := &Property{}
	if err := yaml.NewDecoder(r).Decode(root); err != nil {
		return nil, errors.Wrap(err, "schema")
	}
	return New(root)
}

func (s *Schema) Root() *Property { return s.root }

func (s *Schema) Name() string { return s.root.Name }

// Lookup resolves path, relative to the root, to a property.
func (s *Schema) Lookup(path []string) (*Property, bool) {
	if s == nil {
		return nil, false
	}
	p := s.root
	for _, seg := range path {
		c, ok := p.Child(seg)
		if !ok {
			return nil, false
		}
		p = c
	}
	return p, true
}

// ArrayPaths returns the paths of all OBJECT_ARRAY properties
func (s *Schema) ArrayPaths() (paths [][]string) {
	if s == nil {
		return nil
	}
	var walk func(p *Property, prefix []string)
	walk = func(p *Property, prefix []string) {
		for _, c := range p.Properties {
			path := append(append([]string(nil), prefix...), c.Name)
			if c.Type == TypeObjectArray {
				paths = append(paths, path)
			}
			walk(c, path)
		}
	}
	walk(s.root, nil)
	return paths
}
