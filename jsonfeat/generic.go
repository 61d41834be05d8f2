package jsonfeat

import (
	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/jsontok"
	"github.com/andaru/featurestream/stream"
)

// GenericDecoder is a chunk-fed decoder of JSON documents described by a
// schema. OnStart is emitted with the first token.
type GenericDecoder struct {
	*stream.Pipeline[jsontok.Token]
	m *machine
}

// NewGenericDecoder returns a GenericDecoder reporting to h.
func NewGenericDecoder(h feature.Handler, cfg Config, opts ...Option) *GenericDecoder {
	if cfg.Geometry == nil {
		cfg.Geometry = EmbeddedGeoJSON{}
	}
	d := &GenericDecoder{m: newMachine("json", h, cfg, opts)}
	d.Pipeline = stream.NewPipeline[jsontok.Token]("json", jsontok.New(), d.handle)
	return d
}

// Context returns the decode context shared with the handler
func (d *GenericDecoder) Context() *feature.Context { return d.m.ctx }

// Features returns the number of features started so far
func (d *GenericDecoder) Features() int { return d.m.features }

func (d *GenericDecoder) handle(tok jsontok.Token) error {
	m := d.m
	if !m.started && len(m.cfg.Wrapper) == 0 && tok.Kind == jsontok.StartObject {
		m.ctx.Metadata().SingleFeature = true
	}
	if err := m.start(); err != nil {
		return err
	}
	if len(m.frames) == 0 {
		if len(m.cfg.Wrapper) > 0 {
			if tok.Kind != jsontok.StartObject {
				return m.unsupported(tok, "document is a %s, not an object", tok.Kind)
			}
			m.push(frame{role: roleWrapper})
			return nil
		}
		return d.features(tok)
	}
	top := m.top()
	switch top.role {
	case roleWrapper:
		return d.wrapperMember(tok, top)
	case roleCollection:
		switch tok.Kind {
		case jsontok.StartObject:
			m.push(frame{role: roleFeatureBody})
			return m.beginFeature()
		case jsontok.EndArray:
			return m.close()
		}
		m.skip(tok)
		return nil
	}
	return m.body(tok)
}

// features handles the value holding the features: an object for a single
// feature or an array of feature objects
func (d *GenericDecoder) features(tok jsontok.Token) error {
	m := d.m
	switch tok.Kind {
	case jsontok.StartObject:
		m.push(frame{role: roleFeatureBody})
		return m.beginFeature()
	case jsontok.StartArray:
		m.push(frame{role: roleCollection})
		return nil
	}
	if len(m.frames) == 0 {
		return m.unsupported(tok, "document is a %s, not an object or array", tok.Kind)
	}
	return nil
}

func (d *GenericDecoder) wrapperMember(tok jsontok.Token, w *frame) error {
	m := d.m
	switch {
	case tok.Kind == jsontok.EndObject:
		return m.close()
	case tok.Name != m.cfg.Wrapper[w.level]:
	case w.level == len(m.cfg.Wrapper)-1:
		return d.features(tok)
	case tok.Kind == jsontok.StartObject:
		m.push(frame{role: roleWrapper, level: w.level + 1})
		return nil
	}
	m.skip(tok)
	return nil
}
