/*
Package schema describes the feature types a decoder maps onto.

A Schema is a tree of typed Property declarations rooted at the feature
type. Decoders only query it: Lookup resolves a decoded path to the
declaration it belongs to, and ArrayPaths lists the paths of repeating
objects for multiplicity tracking.

Path segments match a property either by full name or, for qualified
segments such as "ns:height", by their local part. This lets one schema
serve both GML (qualified element names) and JSON (plain member names).

Schemas are usually loaded from YAML:

	name: Building
	properties:
	  - name: id
	    type: STRING
	  - name: geometry
	    type: GEOMETRY
	  - name: addresses
	    type: OBJECT_ARRAY
	    properties:
	      - name: street
	        type: STRING
	  - name: tags
	    type: VALUE_ARRAY
	    valueType: STRING
*/
package schema
