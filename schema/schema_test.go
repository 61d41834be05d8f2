package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buildingYAML = `
name: Building
properties:
  - name: id
    type: string
  - name: ns:height
    type: FLOAT
  - name: geometry
    type: GEOMETRY
  - name: addresses
    type: OBJECT_ARRAY
    properties:
      - name: street
        type: STRING
      - name: units
        type: OBJECT_ARRAY
        properties:
          - name: number
            type: INTEGER
  - name: tags
    type: VALUE_ARRAY
    valueType: STRING
`

func TestParse(t *testing.T) {
	ck := assert.New(t)
	s, err := Parse(strings.NewReader(buildingYAML))
	require.NoError(t, err)
	ck.Equal("Building", s.Name())
	ck.Equal(TypeObject, s.Root().Type)

	for _, tc := range []struct {
		path []string
		want Type
		ok   bool
	}{
		{path: nil, want: TypeObject, ok: true},
		{path: []string{"id"}, want: TypeString, ok: true},
		{path: []string{"gml:id"}, want: TypeString, ok: true},
		{path: []string{"height"}, want: TypeFloat, ok: true},
		{path: []string{"ns:height"}, want: TypeFloat, ok: true},
		{path: []string{"other:height"}, want: TypeFloat, ok: true},
		{path: []string{"addresses", "units", "number"}, want: TypeInteger, ok: true},
		{path: []string{"addresses", "missing"}, ok: false},
		{path: []string{"tags"}, want: TypeValueArray, ok: true},
	} {
		t.Run(strings.Join(tc.path, "."), func(t *testing.T) {
			p, ok := s.Lookup(tc.path)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, p.Type)
			}
		})
	}

	ck.Equal([][]string{{"addresses"}, {"addresses", "units"}}, s.ArrayPaths())

	geom, ok := s.Lookup([]string{"geometry"})
	require.True(t, ok)
	ck.True(geom.IsSpatial())
	ck.Equal(s.Root(), geom.Parent())

	tags, _ := s.Lookup([]string{"tags"})
	ck.True(tags.IsArray())
	ck.True(tags.IsValueArray())
	ck.Equal(TypeString, tags.ScalarType())

	addr, _ := s.Lookup([]string{"addresses"})
	ck.True(addr.IsObject())
	ck.Equal(TypeString, addr.ScalarType())

	num, _ := s.Lookup([]string{"addresses", "units", "number"})
	ck.Equal(TypeInteger, num.ScalarType())
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{name: "bad type", doc: "name: X\nproperties:\n  - name: a\n    type: BLOB\n"},
		{name: "missing name", doc: "name: X\nproperties:\n  - type: STRING\n"},
		{name: "duplicate", doc: "name: X\nproperties:\n  - name: a\n  - name: a\n"},
		{name: "not yaml", doc: "name: [unterminated"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestNilSchema(t *testing.T) {
	ck := assert.New(t)
	var s *Schema
	_, ok := s.Lookup([]string{"a"})
	ck.False(ok)
	ck.Nil(s.ArrayPaths())
	_, err := New(nil)
	ck.Error(err)
	ck.Panics(func() { MustNew(nil) })
}

func TestTypeText(t *testing.T) {
	ck := assert.New(t)
	var got Type
	ck.NoError(got.UnmarshalText([]byte(" object_array ")))
	ck.Equal(TypeObjectArray, got)
	b, _ := TypeDatetime.MarshalText()
	ck.Equal("DATETIME", string(b))
	ck.Equal("Type(77)", Type(77).String())
	ck.True(TypeDate.IsScalar())
	ck.False(TypeGeometry.IsScalar())
}
