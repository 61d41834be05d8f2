/*
Package jsonfeat decodes GeoJSON and schema-described JSON documents into
feature events.

Both decoders are fed arbitrary chunks of a document and drive a
feature.Handler as soon as each token is complete. GeoJSONDecoder knows the
GeoJSON vocabulary and detects single features and feature collections.
GenericDecoder has no fixed vocabulary: the document root (or the member
found at Config.Wrapper) is either one feature object or an array of them,
and repeated objects are indexed by the OBJECT_ARRAY paths of the schema.

Paths are relative to the feature properties. Geometries are reported
under their member name, e.g. "geometry", as one object carrying the
geometry type, with arrays and objects following the GML event shape:

	{"type":"Point","coordinates":[1,2]}
	object-start geometry <POINT>
	value geometry <POINT> INTEGER "1"
	value geometry <POINT> INTEGER "2"
	object-end geometry <POINT 2D>

The coordinate dimension is known once the first position closed.
*/
package jsonfeat
