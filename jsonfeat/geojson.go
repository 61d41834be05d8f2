package jsonfeat

import (
	"strconv"

	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/jsontok"
	"github.com/andaru/featurestream/stream"
	"github.com/golang/glog"
)

// GeoJSONDecoder is a chunk-fed GeoJSON Feature and FeatureCollection
// decoder. OnStart is deferred to the first feature, or the end of the
// document, so that collection counts following the features array are
// still reported.
type GeoJSONDecoder struct {
	*stream.Pipeline[jsontok.Token]
	m *machine

	single     bool
	collection bool
}

// NewGeoJSONDecoder returns a GeoJSONDecoder reporting to h. cfg.Wrapper
// and cfg.Geometry are not used.
func NewGeoJSONDecoder(h feature.Handler, cfg Config, opts ...Option) *GeoJSONDecoder {
	d := &GeoJSONDecoder{m: newMachine("geojson", h, cfg, opts)}
	d.Pipeline = stream.NewPipeline[jsontok.Token]("geojson", jsontok.New(), d.handle)
	return d
}

// Context returns the decode context shared with the handler
func (d *GeoJSONDecoder) Context() *feature.Context { return d.m.ctx }

// Features returns the number of features started so far
func (d *GeoJSONDecoder) Features() int { return d.m.features }

func (d *GeoJSONDecoder) handle(tok jsontok.Token) error {
	m := d.m
	if len(m.frames) == 0 {
		if tok.Kind != jsontok.StartObject {
			return m.unsupported(tok, "GeoJSON document is a %s, not an object", tok.Kind)
		}
		m.push(frame{role: roleRoot})
		return nil
	}
	top := m.top()
	switch top.role {
	case roleRoot:
		return d.rootMember(tok)
	case roleCollection:
		return d.collectionItem(tok)
	case roleFeature:
		return d.featureMember(tok)
	}
	return m.body(tok)
}

func isFeatureMember(name string) bool {
	return name == "id" || name == "properties" || name == "geometry"
}

func (d *GeoJSONDecoder) rootMember(tok jsontok.Token) error {
	m := d.m
	switch {
	case tok.Kind == jsontok.EndObject:
		return m.close()
	case tok.Name == "type" && tok.Kind == jsontok.String:
		switch tok.Value {
		case "Feature":
			return d.beginSingle()
		case "FeatureCollection":
			d.collection = true
		}
		return nil
	case tok.Name == "features" && tok.Kind == jsontok.StartArray && !d.single:
		d.collection = true
		m.push(frame{role: roleCollection})
		return nil
	case tok.Name == "numberReturned" || tok.Name == "numberMatched":
		d.count(tok)
		return nil
	case isFeatureMember(tok.Name) && !d.collection:
		if err := d.beginSingle(); err != nil {
			return err
		}
		return d.featureMember(tok)
	case tok.IsScalar() && !m.started:
		m.ctx.PutAdditionalInfo(tok.Name, tok.Value)
		return nil
	}
	m.skip(tok)
	return nil
}

func (d *GeoJSONDecoder) beginSingle() error {
	if d.single {
		return nil
	}
	d.single = true
	d.m.ctx.Metadata().SingleFeature = true
	if err := d.m.start(); err != nil {
		return err
	}
	return d.m.beginFeature()
}

func (d *GeoJSONDecoder) count(tok jsontok.Token) {
	if tok.Kind != jsontok.Number {
		glog.V(1).Infof("geojson: ignoring %s of type %s", tok.Name, tok.Kind)
		return
	}
	n, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		glog.V(1).Infof("geojson: ignoring %s=%s: %v", tok.Name, tok.Value, err)
		return
	}
	if d.m.started {
		glog.V(1).Infof("geojson: %s=%d after the first feature is not reported", tok.Name, n)
	}
	md := d.m.ctx.Metadata()
	if tok.Name == "numberReturned" {
		md.NumberReturned = &n
	} else {
		md.NumberMatched = &n
	}
}

func (d *GeoJSONDecoder) collectionItem(tok jsontok.Token) error {
	m := d.m
	switch tok.Kind {
	case jsontok.StartObject:
		if err := m.start(); err != nil {
			return err
		}
		m.push(frame{role: roleFeature})
		return m.beginFeature()
	case jsontok.EndArray:
		return m.close()
	}
	m.skip(tok)
	return nil
}

// featureMember handles a member of a feature object, or of the document
// object of a single feature
func (d *GeoJSONDecoder) featureMember(tok jsontok.Token) error {
	m := d.m
	pt := m.ctx.PathTracker()
	switch {
	case tok.Kind == jsontok.EndObject:
		return m.close()
	case tok.Name == "id" && (tok.Kind == jsontok.String || tok.Kind == jsontok.Number):
		pt.TrackAt("id", 0)
		m.ctx.SetIndexes(nil)
		m.ctx.SetValue(tok.Value)
		m.ctx.SetValueType(scalarType(tok))
		err := m.emit(feature.EventValue)
		pt.Truncate(0)
		return err
	case tok.Name == "properties" && tok.Kind == jsontok.StartObject:
		m.push(frame{role: roleProperties})
		return nil
	case tok.Name == "geometry" && tok.Kind == jsontok.StartObject && !m.cfg.SkipGeometry:
		pt.TrackAt("geometry", 0)
		return m.openGeometry(nil)
	case tok.Name == "geometry" && tok.Kind == jsontok.Null && m.cfg.NullValue != nil && !m.cfg.SkipGeometry:
		pt.TrackAt("geometry", 0)
		m.ctx.SetIndexes(nil)
		err := m.value(tok)
		pt.Truncate(0)
		return err
	}
	m.skip(tok)
	return nil
}

func fmtCount(n *int64) string {
	if n == nil {
		return "-"
	}
	return strconv.FormatInt(*n, 10)
}
