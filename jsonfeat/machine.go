package jsonfeat

import (
	"slices"

	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/ferr"
	"github.com/andaru/featurestream/geometry"
	"github.com/andaru/featurestream/jsontok"
	"github.com/andaru/featurestream/multiplicity"
	"github.com/andaru/featurestream/schema"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Config is the external configuration shared by the JSON decoders
type Config struct {
	// Schema is the feature type schema, may be nil
	Schema *schema.Schema
	// Fields limits decoding to the listed top-level properties, if set
	Fields []string
	// SkipGeometry drops geometries
	SkipGeometry bool
	// NullValue is reported for JSON null values. Nulls are dropped if nil.
	NullValue *string
	// Wrapper is the member path of the features in a generic document
	Wrapper []string
	// Geometry decodes string values of geometry properties in generic
	// documents. EmbeddedGeoJSON is used if nil.
	Geometry GeometryDecoder
}

// Option is a decoder option function
type Option func(*machine)

// WithValidation checks the events emitted against the handler contract
func WithValidation() Option {
	return func(m *machine) { m.h = feature.NewValidator(m.h) }
}

type role int

const (
	// GeoJSON document object
	roleRoot role = iota
	// array of feature objects
	roleCollection
	// GeoJSON feature object
	roleFeature
	// generic feature object, its members are properties
	roleFeatureBody
	// generic wrapper object on the way to the features
	roleWrapper
	// GeoJSON properties object
	roleProperties
	roleObject
	roleArray
	roleGeometry
	roleCoords
	// GeometryCollection members
	roleGeometries
	roleSkip
)

type frame struct {
	role role
	// plen is the path length of the members of the container
	plen    int
	indexes []int
	// items counts array items, or the numbers of a position
	items int
	// geometry type and coordinate nesting level
	gtype geometry.Type
	level int
}

// machine is the token state machine shared by the JSON decoders
type machine struct {
	format string
	cfg    Config
	h      feature.Handler
	ctx    *feature.Context
	mult   *multiplicity.Declared
	fields map[string]bool

	frames    []frame
	started   bool
	ended     bool
	inFeature bool
	features  int
}

func newMachine(format string, h feature.Handler, cfg Config, opts []Option) *machine {
	m := &machine{
		format: format,
		cfg:    cfg,
		h:      h,
		ctx:    feature.NewContext(cfg.Schema),
		mult:   multiplicity.NewDeclared(cfg.Schema.ArrayPaths()),
	}
	if len(cfg.Fields) > 0 {
		m.fields = make(map[string]bool, len(cfg.Fields))
		for _, f := range cfg.Fields {
			m.fields[f] = true
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *machine) emit(kind feature.EventKind) error {
	if err := feature.Dispatch(m.h, kind, m.ctx); err != nil {
		return errors.WithStack(ferr.HandlerFailure(err, ferr.WithFormat(m.format)))
	}
	return nil
}

func (m *machine) unsupported(tok jsontok.Token, format string, args ...interface{}) error {
	return errors.WithStack(ferr.Unsupported(
		ferr.WithFormat(m.format), ferr.WithOffset(tok.Offset), ferr.WithMessagef(format, args...)))
}

func (m *machine) top() *frame { return &m.frames[len(m.frames)-1] }

func (m *machine) push(f frame) { m.frames = append(m.frames, f) }

// skip ignores tok, and the subtree it opens
func (m *machine) skip(tok jsontok.Token) {
	if tok.Kind == jsontok.StartObject || tok.Kind == jsontok.StartArray {
		m.push(frame{role: roleSkip, plen: m.ctx.PathTracker().Len()})
	}
}

func (m *machine) start() error {
	if m.started {
		return nil
	}
	m.started = true
	md := m.ctx.Metadata()
	glog.V(1).Infof("%s: document start, numberReturned=%s numberMatched=%s",
		m.format, fmtCount(md.NumberReturned), fmtCount(md.NumberMatched))
	return m.emit(feature.EventStart)
}

func (m *machine) end() error {
	m.ended = true
	glog.V(1).Infof("%s: document end, %d features", m.format, m.features)
	return m.emit(feature.EventEnd)
}

func (m *machine) beginFeature() error {
	m.inFeature = true
	m.features++
	m.mult.Reset()
	m.ctx.ResetFeature()
	return m.emit(feature.EventFeatureStart)
}

func (m *machine) endFeature() error {
	m.inFeature = false
	m.ctx.PathTracker().Clear()
	m.ctx.SetIndexes(nil)
	m.ctx.ClearGeometry()
	err := m.emit(feature.EventFeatureEnd)
	m.ctx.ResetFeature()
	return err
}

// close pops the top frame, emitting its end event
func (m *machine) close() error {
	f := m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]
	pt := m.ctx.PathTracker()

	var err error
	switch f.role {
	case roleRoot:
		if m.inFeature {
			err = m.endFeature()
		}
		if err == nil {
			err = m.start()
		}
		if err == nil {
			err = m.end()
		}
	case roleFeature, roleFeatureBody:
		err = m.endFeature()
	case roleObject:
		pt.Truncate(f.plen)
		m.ctx.SetIndexes(f.indexes)
		err = m.emit(feature.EventObjectEnd)
	case roleArray:
		pt.Truncate(f.plen)
		m.ctx.SetIndexes(f.indexes)
		err = m.emit(feature.EventArrayEnd)
	case roleGeometry:
		err = m.closeGeometry(f)
	case roleCoords:
		err = m.closeCoords(f)
	}
	if err != nil {
		return err
	}
	switch {
	case len(m.frames) > 0:
		pt.Truncate(m.top().plen)
	case m.started && !m.ended:
		return m.end()
	}
	return nil
}

func (m *machine) selected(name string) bool {
	return m.fields == nil || m.fields[name]
}

// body handles a token below a feature
func (m *machine) body(tok jsontok.Token) error {
	top := m.top()
	switch top.role {
	case roleSkip:
		if tok.Kind == jsontok.EndObject || tok.Kind == jsontok.EndArray {
			return m.close()
		}
		m.skip(tok)
		return nil
	case roleGeometry:
		return m.geometryMember(tok, top)
	case roleCoords:
		return m.coordinate(tok, top)
	case roleGeometries:
		switch tok.Kind {
		case jsontok.StartObject:
			return m.openGeometry(top.indexes)
		case jsontok.EndArray:
			return m.close()
		}
		m.skip(tok)
		return nil
	}
	return m.property(tok, top)
}

// property handles a member or item of a properties container
func (m *machine) property(tok jsontok.Token, parent *frame) error {
	if tok.Kind == jsontok.EndObject || tok.Kind == jsontok.EndArray {
		return m.close()
	}
	pt := m.ctx.PathTracker()
	if tok.HasName {
		if (parent.role == roleProperties || parent.role == roleFeatureBody) && !m.selected(tok.Name) {
			m.skip(tok)
			return nil
		}
		pt.TrackAt(tok.Name, parent.plen)
	} else {
		pt.Truncate(parent.plen)
	}

	if prop, ok := m.ctx.Schema(); ok && prop.IsSpatial() {
		return m.geometryProperty(tok, parent)
	}

	switch tok.Kind {
	case jsontok.StartObject:
		if !tok.HasName {
			m.mult.Declare(pt.Peek())
			m.mult.Track(pt.Peek())
			parent.items++
		}
		idx := m.mult.ForPath(pt.Peek())
		m.push(frame{role: roleObject, plen: pt.Len(), indexes: idx})
		m.ctx.SetIndexes(idx)
		return m.emit(feature.EventObjectStart)
	case jsontok.StartArray:
		idx := parent.indexes
		if !tok.HasName {
			parent.items++
			idx = append(slices.Clone(parent.indexes), parent.items)
		}
		m.push(frame{role: roleArray, plen: pt.Len(), indexes: idx})
		m.ctx.SetIndexes(idx)
		return m.emit(feature.EventArrayStart)
	}

	idx := parent.indexes
	if parent.role == roleArray {
		parent.items++
		idx = append(slices.Clone(parent.indexes), parent.items)
	}
	m.ctx.SetIndexes(idx)
	err := m.value(tok)
	pt.Truncate(parent.plen)
	return err
}

// value emits a scalar token at the current path
func (m *machine) value(tok jsontok.Token) error {
	v := tok.Value
	if tok.Kind == jsontok.Null {
		if m.cfg.NullValue == nil {
			return nil
		}
		v = *m.cfg.NullValue
	}
	m.ctx.SetValue(v)
	m.ctx.SetValueType(m.valueType(tok))
	return m.emit(feature.EventValue)
}

func (m *machine) valueType(tok jsontok.Token) schema.Type {
	if prop, ok := m.ctx.Schema(); ok {
		if prop.Type.IsScalar() || prop.IsValueArray() && prop.ValueType != schema.TypeUnknown {
			return prop.ScalarType()
		}
	}
	return scalarType(tok)
}

func scalarType(tok jsontok.Token) schema.Type {
	switch tok.Kind {
	case jsontok.Number:
		if tok.IsFloat() {
			return schema.TypeFloat
		}
		return schema.TypeInteger
	case jsontok.True, jsontok.False:
		return schema.TypeBoolean
	}
	return schema.TypeString
}

// geometryProperty handles a property the schema declares as geometry
func (m *machine) geometryProperty(tok jsontok.Token, parent *frame) error {
	if m.cfg.SkipGeometry || tok.Kind == jsontok.Null && m.cfg.NullValue == nil {
		m.skip(tok)
		m.ctx.PathTracker().Truncate(parent.plen)
		return nil
	}
	switch tok.Kind {
	case jsontok.StartObject:
		return m.openGeometry(parent.indexes)
	case jsontok.String:
		if m.cfg.Geometry != nil {
			m.ctx.SetIndexes(parent.indexes)
			err := m.cfg.Geometry.DecodeGeometry([]byte(tok.Value), m.ctx, m.h)
			m.ctx.PathTracker().Truncate(parent.plen)
			return err
		}
	case jsontok.StartArray:
		return m.unsupported(tok, "geometry %q is an array", m.ctx.PathTracker().String())
	}
	m.ctx.SetIndexes(parent.indexes)
	err := m.value(tok)
	m.ctx.PathTracker().Truncate(parent.plen)
	return err
}

// openGeometry starts a GeoJSON geometry object at the current path. The
// object start is emitted once the geometry type is known.
func (m *machine) openGeometry(idx []int) error {
	m.push(frame{role: roleGeometry, plen: m.ctx.PathTracker().Len(), indexes: idx})
	return nil
}

func (m *machine) geometryMember(tok jsontok.Token, g *frame) error {
	switch {
	case tok.Kind == jsontok.EndObject:
		return m.close()
	case tok.Name == "type" && tok.Kind == jsontok.String:
		if g.gtype != geometry.None {
			return m.unsupported(tok, "repeated geometry type")
		}
		gt, ok := geometry.FromGeoJSON(tok.Value)
		if !ok {
			return m.unsupported(tok, "unknown geometry type %q", tok.Value)
		}
		g.gtype = gt
		m.enterGeometry(g)
		m.ctx.SetGeometryDimension(0)
		return m.emit(feature.EventObjectStart)
	case tok.Name == "coordinates" && tok.Kind == jsontok.StartArray:
		levels := g.gtype.Levels()
		if len(levels) == 0 {
			if g.gtype == geometry.None {
				return m.unsupported(tok, "geometry coordinates before the geometry type")
			}
			return m.unsupported(tok, "%s has no coordinates", g.gtype)
		}
		m.push(frame{role: roleCoords, plen: g.plen, indexes: g.indexes, gtype: g.gtype})
		return m.level(levels[0], true)
	case tok.Name == "geometries" && tok.Kind == jsontok.StartArray:
		if g.gtype != geometry.GeometryCollection {
			return m.unsupported(tok, "geometries member of a %s", g.gtype)
		}
		m.push(frame{role: roleGeometries, plen: g.plen, indexes: g.indexes})
		return nil
	}
	m.skip(tok)
	return nil
}

func (m *machine) enterGeometry(g *frame) {
	m.ctx.SetIndexes(g.indexes)
	m.ctx.SetInGeometry(true)
	m.ctx.SetGeometryType(g.gtype)
}

func (m *machine) closeGeometry(g frame) error {
	if g.gtype == geometry.None {
		return nil
	}
	m.enterGeometry(&g)
	if err := m.emit(feature.EventObjectEnd); err != nil {
		return err
	}
	// back to the enclosing geometry collection, if any
	for i := len(m.frames) - 1; i > -1; i-- {
		if f := &m.frames[i]; f.role == roleGeometry {
			m.enterGeometry(f)
			m.ctx.SetGeometryDimension(0)
			return nil
		}
	}
	m.ctx.ClearGeometry()
	return nil
}

func (m *machine) level(l geometry.Level, start bool) error {
	switch {
	case l == geometry.LevelArray && start:
		return m.emit(feature.EventArrayStart)
	case l == geometry.LevelArray:
		return m.emit(feature.EventArrayEnd)
	case l == geometry.LevelObject && start:
		return m.emit(feature.EventObjectStart)
	case l == geometry.LevelObject:
		return m.emit(feature.EventObjectEnd)
	}
	return nil
}

// coordinate handles a token of a coordinates member
func (m *machine) coordinate(tok jsontok.Token, c *frame) error {
	levels := c.gtype.Levels()
	last := c.level == len(levels)-1
	switch tok.Kind {
	case jsontok.StartArray:
		if last {
			return m.unsupported(tok, "%s coordinates nested too deep", c.gtype)
		}
		m.push(frame{role: roleCoords, plen: c.plen, indexes: c.indexes, gtype: c.gtype, level: c.level + 1})
		return m.level(levels[c.level+1], true)
	case jsontok.EndArray:
		return m.close()
	case jsontok.Number:
		if !last {
			return m.unsupported(tok, "%s coordinates nested too shallow", c.gtype)
		}
		c.items++
		m.ctx.SetIndexes(c.indexes)
		m.ctx.SetValue(tok.Value)
		m.ctx.SetValueType(scalarType(tok))
		return m.emit(feature.EventValue)
	}
	return m.unsupported(tok, "unexpected %s in coordinates", tok.Kind)
}

func (m *machine) closeCoords(c frame) error {
	levels := c.gtype.Levels()
	if c.level == len(levels)-1 {
		if _, ok := m.ctx.GeometryDimension(); !ok && c.items > 0 {
			m.ctx.SetGeometryDimension(c.items)
		}
	}
	m.ctx.SetIndexes(c.indexes)
	return m.level(levels[c.level], false)
}
