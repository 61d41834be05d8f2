package jsonfeat

import (
	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/jsontok"
	"github.com/andaru/featurestream/stream"
)

// GeometryDecoder decodes a geometry embedded as a string value. ctx holds
// the path and indexes of the geometry property; the geometry events are
// reported to h.
type GeometryDecoder interface {
	DecodeGeometry(raw []byte, ctx *feature.Context, h feature.Handler) error
}

// GeometryDecoderFunc is a function implementing GeometryDecoder
type GeometryDecoderFunc func(raw []byte, ctx *feature.Context, h feature.Handler) error

func (f GeometryDecoderFunc) DecodeGeometry(raw []byte, ctx *feature.Context, h feature.Handler) error {
	return f(raw, ctx, h)
}

// EmbeddedGeoJSON decodes string values holding a GeoJSON geometry object
type EmbeddedGeoJSON struct{}

func (EmbeddedGeoJSON) DecodeGeometry(raw []byte, ctx *feature.Context, h feature.Handler) error {
	m := &machine{format: "geojson", h: h, ctx: ctx}
	idx := ctx.Indexes()
	p := stream.NewPipeline[jsontok.Token]("geojson", jsontok.New(), func(tok jsontok.Token) error {
		if len(m.frames) > 0 {
			return m.body(tok)
		}
		if tok.Kind != jsontok.StartObject {
			return m.unsupported(tok, "embedded geometry is a %s, not an object", tok.Kind)
		}
		return m.openGeometry(idx)
	})
	return stream.FeedAll(p, raw, 0)
}
