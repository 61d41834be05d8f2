/*
Package featurestream decodes feature documents into a stream of events,
one chunk of input at a time.

GML (WFS feature collections and single features), GeoJSON and
schema-driven generic JSON are supported. Each decoder is a
stream.Feeder: the caller pushes byte chunks of any size and finishes the
input, and the decoder delivers the same strictly nested event sequence
to its feature.Handler regardless of where the chunk boundaries fall.

Events carry a shared feature.Context holding the current property path,
the multiplicity indexes of repeated properties, the current value and
its type, and the geometry state.

See the gml and jsonfeat sub-directories for the decoders, transport for
feeding them from an io.Reader, and config for building a decoder from a
YAML configuration.
*/
package featurestream
