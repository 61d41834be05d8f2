package gml

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/ferr"
	"github.com/andaru/featurestream/geometry"
	"github.com/andaru/featurestream/multiplicity"
	"github.com/andaru/featurestream/schema"
	"github.com/andaru/featurestream/stream"
	"github.com/andaru/featurestream/xmltok"
	"github.com/andaru/featurestream/xmlutil"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const format = "gml"

// Config is the external configuration of a Decoder
type Config struct {
	// Namespaces maps the prefixes used in paths to namespace URIs
	Namespaces xmlutil.PrefixMap
	// FeatureTypes are the element names starting a feature. A name matches
	// by namespace and local name, or by local name alone. When empty, the
	// schema name is used as local name.
	FeatureTypes []xml.Name
	// Schema is the feature type schema, may be nil
	Schema *schema.Schema
	// Fields limits decoding to the listed top-level properties, if set
	Fields []string
	// SkipGeometry drops geometry properties
	SkipGeometry bool
	// PassThrough reports every non-geometry element as an object and
	// omits the feature id value
	PassThrough bool
}

// Option is a Decoder option function
type Option func(*Decoder)

// WithValidation checks the events emitted against the handler contract
func WithValidation() Option {
	return func(d *Decoder) { d.h = feature.NewValidator(d.h) }
}

// Decoder is a chunk-fed GML feature decoder
type Decoder struct {
	*stream.Pipeline[xmltok.Token]

	cfg    Config
	h      feature.Handler
	ctx    *feature.Context
	names  *xmlutil.Normalizer
	mult   *multiplicity.Reentry
	fields map[string]bool

	depth        int
	featureDepth int
	inFeature    bool
	features     int

	text      strings.Builder
	buffering bool
	// leaf is unset once a child element closed; trailing mixed content is dropped
	leaf bool

	skipping bool
	skipAt   int

	elems []elem
	geom  *geomState
}

// elem is the state of an open element below the feature element
type elem struct {
	object   bool
	geomProp bool
	geomRoot bool
	part     geometry.Part
	indexes  []int
}

// geomState is the state of an open geometry property
type geomState struct {
	depth   int
	indexes []int
	typ     geometry.Type
	coords  bool
}

// NewDecoder returns a Decoder reporting to h.
func NewDecoder(h feature.Handler, cfg Config, opts ...Option) *Decoder {
	d := &Decoder{
		cfg:   cfg,
		h:     h,
		ctx:   feature.NewContext(cfg.Schema, feature.WithTypeSegment()),
		names: xmlutil.NewNormalizer(cfg.Namespaces),
		mult:  multiplicity.NewReentry(1),
	}
	if len(d.cfg.FeatureTypes) == 0 && cfg.Schema != nil && cfg.Schema.Name() != "" {
		d.cfg.FeatureTypes = []xml.Name{{Local: cfg.Schema.Name()}}
	}
	if len(cfg.Fields) > 0 {
		d.fields = make(map[string]bool, len(cfg.Fields))
		for _, f := range cfg.Fields {
			d.fields[f] = true
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Pipeline = stream.NewPipeline[xmltok.Token](format, xmltok.New(), d.handle)
	return d
}

// Context returns the decode context shared with the handler
func (d *Decoder) Context() *feature.Context { return d.ctx }

func (d *Decoder) emit(kind feature.EventKind) error {
	if err := feature.Dispatch(d.h, kind, d.ctx); err != nil {
		return errors.WithStack(ferr.HandlerFailure(err, ferr.WithFormat(format)))
	}
	return nil
}

func (d *Decoder) handle(tok xmltok.Token) error {
	switch tok.Kind {
	case xmltok.StartElement:
		err := d.startElement(tok)
		d.depth++
		return err
	case xmltok.EndElement:
		d.depth--
		return d.endElement()
	case xmltok.CharData:
		d.characters(tok)
	case xmltok.EndDocument:
		glog.V(1).Infof("gml: document end, %d features", d.features)
	}
	return nil
}

func (d *Decoder) qname(name xml.Name, prefix string) string {
	return d.names.QualifiedName(name.Space, prefix, name.Local)
}

func (d *Decoder) isFeatureType(name xml.Name) bool {
	// a namespace mismatch still matches by local name
	for _, ft := range d.cfg.FeatureTypes {
		if ft.Local == name.Local {
			return true
		}
	}
	return false
}

func (d *Decoder) copyAttrs(tok xmltok.Token) {
	d.ctx.ClearAdditionalInfo()
	for _, a := range tok.Attr {
		d.ctx.PutAdditionalInfo(d.names.QualifiedName(a.Name.Space, a.Prefix, a.Name.Local), a.Value)
	}
}

func (d *Decoder) startElement(tok xmltok.Token) error {
	if d.skipping {
		return nil
	}
	d.text.Reset()
	d.buffering = false
	d.leaf = true

	switch {
	case d.depth == 0:
		d.root(tok)
		single := d.isFeatureType(tok.Name)
		d.ctx.Metadata().SingleFeature = single
		if err := d.emit(feature.EventStart); err != nil {
			return err
		}
		if single {
			return d.beginFeature(tok)
		}
	case !d.inFeature:
		if d.isFeatureType(tok.Name) {
			return d.beginFeature(tok)
		}
	default:
		return d.property(tok)
	}
	return nil
}

// root reads the collection metadata of the document element
func (d *Decoder) root(tok xmltok.Token) {
	md := d.ctx.Metadata()
	var numberOfFeatures *int64
	for _, a := range tok.Attr {
		switch a.Name.Local {
		case "numberReturned":
			md.NumberReturned = parseCount(a)
		case "numberMatched":
			md.NumberMatched = parseCount(a)
		case "numberOfFeatures":
			numberOfFeatures = parseCount(a)
		}
	}
	if md.NumberReturned == nil {
		md.NumberReturned = numberOfFeatures
	}
	d.copyAttrs(tok)
	glog.V(1).Infof("gml: document start %s, numberReturned=%s numberMatched=%s",
		tok.Name.Local, fmtCount(md.NumberReturned), fmtCount(md.NumberMatched))
}

func parseCount(a xmltok.Attr) *int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(a.Value), 10, 64)
	if err != nil {
		glog.V(1).Infof("gml: ignoring %s=%q: %v", a.Name.Local, a.Value, err)
		return nil
	}
	return &n
}

func fmtCount(n *int64) string {
	if n == nil {
		return "-"
	}
	return strconv.FormatInt(*n, 10)
}

func (d *Decoder) beginFeature(tok xmltok.Token) error {
	d.inFeature = true
	d.featureDepth = d.depth
	d.features++
	d.mult.Reset()
	d.ctx.ResetFeature()
	d.elems = d.elems[:0]
	d.geom = nil

	pt := d.ctx.PathTracker()
	pt.Track(d.qname(tok.Name, tok.Prefix))
	d.mult.Track(pt.Peek())
	d.copyAttrs(tok)
	glog.V(2).Infof("gml: feature %s at offset %d", pt.String(), tok.Offset)
	if err := d.emit(feature.EventFeatureStart); err != nil {
		return err
	}
	if d.cfg.PassThrough {
		return nil
	}
	for _, a := range tok.Attr {
		if a.Name.Local == "id" && strings.HasPrefix(a.Name.Space, xmlutil.GMLNamespacePrefix) {
			pt.Track("id")
			d.ctx.SetValue(a.Value)
			d.ctx.SetValueType(schema.TypeString)
			err := d.emit(feature.EventValue)
			pt.Truncate(1)
			return err
		}
	}
	return nil
}

func (d *Decoder) skip() {
	d.skipping = true
	d.skipAt = d.depth
}

func (d *Decoder) selected(qname string) bool {
	if d.fields == nil {
		return true
	}
	_, local := xmlutil.Split(qname)
	return d.fields[qname] || d.fields[local]
}

func (d *Decoder) property(tok xmltok.Token) error {
	if g := d.geom; g != nil && d.depth > g.depth {
		return d.geometryElement(tok)
	}
	rel := d.depth - d.featureDepth
	qn := d.qname(tok.Name, tok.Prefix)
	pt := d.ctx.PathTracker()
	pt.TrackAt(qn, rel)
	if rel == 1 && !d.selected(qn) {
		d.skip()
		return nil
	}
	d.mult.Track(pt.Peek())
	d.copyAttrs(tok)
	idx := d.mult.ForPath(pt.Peek())
	d.ctx.SetIndexes(idx)

	e := elem{indexes: idx}
	prop, ok := d.ctx.Schema()
	switch {
	case ok && prop.IsSpatial():
		if d.cfg.SkipGeometry {
			d.skip()
			return nil
		}
		e.geomProp = true
		d.geom = &geomState{depth: d.depth, indexes: idx}
	case d.cfg.PassThrough || ok && prop.IsObject():
		e.object = true
		if err := d.emit(feature.EventObjectStart); err != nil {
			return err
		}
	}
	d.elems = append(d.elems, e)
	return nil
}

// geometryElement drives the geometry sub-machine for an element nested in
// a geometry property.
func (d *Decoder) geometryElement(tok xmltok.Token) error {
	g := d.geom
	var e elem
	defer func() { d.elems = append(d.elems, e) }()

	if g.typ == geometry.None {
		gt, ok := geometry.FromGML(tok.Name.Local)
		if !ok {
			return nil
		}
		g.typ = gt
		e.geomRoot = true
		d.ctx.SetIndexes(g.indexes)
		d.ctx.SetInGeometry(true)
		d.ctx.SetGeometryType(gt)
		d.ctx.SetGeometryDimension(0)
		d.srsDimension(tok)
		d.copyAttrs(tok)
		if err := d.emit(feature.EventObjectStart); err != nil {
			return err
		}
		if gt == geometry.MultiPolygon {
			return d.emit(feature.EventArrayStart)
		}
		return nil
	}

	e.part = geometry.PartOf(tok.Name.Local, g.typ)
	switch e.part {
	case geometry.PartRing, geometry.PartLineString, geometry.PartPointMember:
		return d.emit(feature.EventArrayStart)
	case geometry.PartPolygon:
		return d.emit(feature.EventObjectStart)
	case geometry.PartCoordinates:
		g.coords = true
		d.srsDimension(tok)
	case geometry.PartNone:
	}
	return nil
}

// srsDimension records the srsDimension attribute of tok, unless a
// dimension is already known
func (d *Decoder) srsDimension(tok xmltok.Token) {
	if _, ok := d.ctx.GeometryDimension(); ok {
		return
	}
	for _, a := range tok.Attr {
		if a.Name.Local != "srsDimension" {
			continue
		}
		if dim, err := strconv.Atoi(strings.TrimSpace(a.Value)); err == nil && dim > 0 {
			d.ctx.SetGeometryDimension(dim)
		}
	}
}

func (d *Decoder) characters(tok xmltok.Token) {
	if !d.inFeature || d.skipping || !d.leaf || tok.IsWhitespace() {
		return
	}
	if g := d.geom; g != nil && d.depth > g.depth+1 && !g.coords {
		return
	}
	d.text.Write(tok.Text)
	d.buffering = true
}

func (d *Decoder) flush() error {
	if !d.buffering {
		return nil
	}
	d.buffering = false
	d.ctx.SetValue(d.text.String())
	d.text.Reset()
	vt := schema.TypeString
	if prop, ok := d.ctx.Schema(); ok {
		vt = prop.ScalarType()
	}
	d.ctx.SetValueType(vt)
	return d.emit(feature.EventValue)
}

func (d *Decoder) endElement() error {
	if d.skipping {
		if d.depth == d.skipAt {
			d.skipping = false
			d.ctx.PathTracker().Truncate(d.depth - d.featureDepth)
		}
		return nil
	}
	err := d.flush()
	d.leaf = false
	if err != nil {
		return err
	}

	switch {
	case d.inFeature && d.depth == d.featureDepth:
		d.inFeature = false
		d.mult.Reset()
		d.ctx.SetIndexes(nil)
		d.ctx.ClearAdditionalInfo()
		if err := d.emit(feature.EventFeatureEnd); err != nil {
			return err
		}
		d.ctx.ResetFeature()
		if d.depth == 0 {
			return d.emit(feature.EventEnd)
		}
		return nil
	case d.depth == 0:
		return d.emit(feature.EventEnd)
	case !d.inFeature:
		return nil
	}

	e := d.elems[len(d.elems)-1]
	d.elems = d.elems[:len(d.elems)-1]

	if g := d.geom; g != nil && d.depth > g.depth {
		return d.geometryEnd(e)
	}
	switch {
	case e.geomProp:
		d.geom = nil
		d.ctx.ClearGeometry()
	case e.object:
		d.ctx.SetIndexes(e.indexes)
		if err := d.emit(feature.EventObjectEnd); err != nil {
			return err
		}
	}
	d.ctx.PathTracker().Truncate(d.depth - d.featureDepth)
	return nil
}

func (d *Decoder) geometryEnd(e elem) error {
	g := d.geom
	if e.geomRoot {
		if g.typ == geometry.MultiPolygon {
			if err := d.emit(feature.EventArrayEnd); err != nil {
				return err
			}
		}
		err := d.emit(feature.EventObjectEnd)
		g.typ = geometry.None
		d.ctx.ClearGeometry()
		return err
	}
	switch e.part {
	case geometry.PartRing, geometry.PartLineString, geometry.PartPointMember:
		return d.emit(feature.EventArrayEnd)
	case geometry.PartPolygon:
		return d.emit(feature.EventObjectEnd)
	case geometry.PartCoordinates:
		g.coords = false
	case geometry.PartNone:
	}
	return nil
}

// Features returns the number of features started so far
func (d *Decoder) Features() int { return d.features }

// Namespaces returns the namespaces of the prefixes used in paths so far
func (d *Decoder) Namespaces() xmlutil.PrefixMap { return d.names.Namespaces() }

var _ stream.Feeder = (*Decoder)(nil)

