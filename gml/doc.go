/*
Package gml decodes GML/WFS feature collections into feature events.

The Decoder is fed arbitrary chunks of an XML document and drives a
feature.Handler as soon as each token is complete:

	d := gml.NewDecoder(h, gml.Config{
		Namespaces:   xmlutil.PrefixMap{"ns": "urn:example:buildings"},
		FeatureTypes: []xml.Name{{Space: "urn:example:buildings", Local: "Building"}},
		Schema:       s,
	})
	for chunk := range chunks {
		if err := d.Push(chunk); err != nil {
			return err
		}
	}
	return d.Finish()

Paths start with the qualified feature type name and use normalized
"prefix:local" names. Repeated elements are indexed by re-entry: every
element level below the feature carries a 1-based occurrence counter.

Geometry properties (schema type GEOMETRY) are reported as one object per
geometry, with arrays for rings, line string members and point members, and
objects for the polygons of a multi polygon. Coordinate text (posList, pos,
coordinates) is passed on unparsed as values.
*/
package gml
