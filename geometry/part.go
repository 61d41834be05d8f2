package geometry

import "fmt"

// Part classifies an element nested inside a GML geometry.
type Part int

const (
	// PartNone is an element without structural meaning, e.g. gml:LinearRing
	PartNone Part = iota
	// PartRing is a polygon boundary (exterior, interior and their GML 2 names)
	PartRing
	// PartLineString is a line string member of a multi line string
	PartLineString
	// PartPointMember is a point member of a multi point
	PartPointMember
	// PartPolygon is a polygon member of a multi polygon
	PartPolygon
	// PartCoordinates holds coordinate text
	PartCoordinates
)

func (p Part) String() string {
	switch p {
	case PartNone:
		return "none"
	case PartRing:
		return "ring"
	case PartLineString:
		return "line-string"
	case PartPointMember:
		return "point-member"
	case PartPolygon:
		return "polygon"
	case PartCoordinates:
		return "coordinates"
	default:
		return fmt.Sprintf("Part(%d)", int(p))
	}
}

var gmlParts = map[string]Part{
	"exterior":        PartRing,
	"interior":        PartRing,
	"outerBoundaryIs": PartRing,
	"innerBoundaryIs": PartRing,
	"LineString":      PartLineString,
	"pointMember":     PartPointMember,
	"Polygon":         PartPolygon,
	"Surface":         PartPolygon,
	"posList":         PartCoordinates,
	"pos":             PartCoordinates,
	"coordinates":     PartCoordinates,
}

// PartOf classifies the local name of an element nested in a geometry of type
// within. Polygons only count as parts of multi polygons.
func PartOf(local string, within Type) Part {
	p := gmlParts[local]
	if p == PartPolygon && within != MultiPolygon {
		return PartNone
	}
	return p
}

// Wraps returns the event a part opens and closes
func (p Part) Wraps() Level {
	switch p {
	case PartRing, PartLineString, PartPointMember:
		return LevelArray
	case PartPolygon:
		return LevelObject
	case PartNone, PartCoordinates:
		return LevelNone
	default:
		return LevelNone
	}
}
