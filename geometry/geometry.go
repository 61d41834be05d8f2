// Package geometry holds the geometry vocabulary shared by the feature decoders.
package geometry

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// Type is a simple feature geometry type
type Type int

const (
	None Type = iota
	Point
	MultiPoint
	LineString
	MultiLineString
	Polygon
	MultiPolygon
	GeometryCollection
)

var typeNames = [...]string{
	None:               "NONE",
	Point:              "POINT",
	MultiPoint:         "MULTI_POINT",
	LineString:         "LINE_STRING",
	MultiLineString:    "MULTI_LINE_STRING",
	Polygon:            "POLYGON",
	MultiPolygon:       "MULTI_POLYGON",
	GeometryCollection: "GEOMETRY_COLLECTION",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	b = bytes.TrimSpace(b)
	for i, n := range typeNames {
		if string(b) == n {
			*t = Type(i)
			return nil
		}
	}
	if gt, ok := FromGeoJSON(string(b)); ok {
		*t = gt
		return nil
	}
	return errors.Errorf("unknown geometry type %q", b)
}

// Valid reports whether t names an actual geometry
func (t Type) Valid() bool { return t > None && int(t) < len(typeNames) }

var gmlTypes = map[string]Type{
	"Point":           Point,
	"MultiPoint":      MultiPoint,
	"LineString":      LineString,
	"Curve":           LineString,
	"MultiLineString": MultiLineString,
	"MultiCurve":      MultiLineString,
	"Polygon":         Polygon,
	"Surface":         Polygon,
	"MultiPolygon":    MultiPolygon,
	"MultiSurface":    MultiPolygon,
	"MultiGeometry":   GeometryCollection,
}

// FromGML returns the geometry type of a GML element local name
func FromGML(local string) (Type, bool) {
	t, ok := gmlTypes[local]
	return t, ok
}

var geoJSONTypes = map[string]Type{
	"Point":              Point,
	"MultiPoint":         MultiPoint,
	"LineString":         LineString,
	"MultiLineString":    MultiLineString,
	"Polygon":            Polygon,
	"MultiPolygon":       MultiPolygon,
	"GeometryCollection": GeometryCollection,
}

// FromGeoJSON returns the geometry type of a GeoJSON "type" member value
func FromGeoJSON(name string) (Type, bool) {
	t, ok := geoJSONTypes[name]
	return t, ok
}

// Level is the structural event a nesting level of a coordinate tree maps to.
type Level int

const (
	// LevelNone levels emit no events of their own
	LevelNone Level = iota
	// LevelArray levels are wrapped in array start/end events
	LevelArray
	// LevelObject levels are wrapped in object start/end events
	LevelObject
)

// Levels describes the nesting of a GeoJSON coordinates member of type t,
// outermost first. The last entry is always the position level.
//
// The events follow the GML geometry event shape: members of multi
// geometries and polygon rings are arrays, polygons of a multi polygon are
// objects, and the multi polygon coordinates are one enclosing array.
func (t Type) Levels() []Level {
	switch t {
	case Point:
		return []Level{LevelNone}
	case LineString:
		return []Level{LevelNone, LevelNone}
	case MultiPoint:
		return []Level{LevelNone, LevelArray}
	case Polygon, MultiLineString:
		return []Level{LevelNone, LevelArray, LevelNone}
	case MultiPolygon:
		return []Level{LevelArray, LevelObject, LevelArray, LevelNone}
	default:
		return nil
	}
}
