package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andaru/featurestream/config"
	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/gml"
	"github.com/andaru/featurestream/metrics"
	"github.com/andaru/featurestream/stream"
	"github.com/andaru/featurestream/transport"
	"github.com/andaru/featurestream/wfs"
	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// runner decodes documents, printing their events to out
type runner struct {
	config       string
	format       string
	schema       string
	capabilities string
	featureTypes []string
	chunkSize    int
	metrics      bool
	out          io.Writer

	features int
}

func (r *runner) loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if r.config != "" {
		var err error
		if cfg, err = config.Load(r.config); err != nil {
			return nil, err
		}
	}
	if r.format != "" {
		cfg.Format = config.Format(r.format)
	}
	if r.schema != "" {
		abs, err := filepath.Abs(r.schema)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		cfg.Schema, cfg.SchemaFile = nil, abs
	}
	if len(r.featureTypes) > 0 {
		cfg.FeatureTypes = r.featureTypes
	}
	if r.capabilities != "" {
		// feature type prefixes resolve against the capabilities
		fts := cfg.FeatureTypes
		cfg.FeatureTypes = nil
		defer func() { cfg.FeatureTypes = fts }()
	}
	return cfg, cfg.Check()
}

// gmlConfig returns the GML decoder configuration of a capabilities document
func (r *runner) gmlConfig(cfg *config.Config) (gml.Config, error) {
	f, err := os.Open(r.capabilities)
	if err != nil {
		return gml.Config{}, errors.WithStack(err)
	}
	defer f.Close()
	caps, err := wfs.ParseCapabilities(f)
	if err != nil {
		return gml.Config{}, err
	}
	s, err := cfg.LoadSchema()
	if err != nil {
		return gml.Config{}, err
	}
	gc, err := caps.GMLConfig(s, cfg.FeatureTypes...)
	if err != nil {
		return gml.Config{}, err
	}
	for p, uri := range cfg.Namespaces {
		gc.Namespaces[p] = uri
	}
	gc.Fields, gc.SkipGeometry, gc.PassThrough = cfg.Fields, cfg.SkipGeometry, cfg.PassThrough
	return gc, nil
}

func (r *runner) run(ctx context.Context, files []string) error {
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	var newFeeder func(feature.Handler) (stream.Feeder, error)
	if r.capabilities != "" {
		if cfg.Format != config.FormatGML {
			return errors.Errorf("capabilities need the gml format, not %s", cfg.Format)
		}
		gc, err := r.gmlConfig(cfg)
		if err != nil {
			return err
		}
		newFeeder = func(h feature.Handler) (stream.Feeder, error) {
			var opts []gml.Option
			if cfg.Validate {
				opts = append(opts, gml.WithValidation())
			}
			return gml.NewDecoder(h, gc, opts...), nil
		}
	} else {
		newFeeder = cfg.NewFeeder
	}

	var m *metrics.Metrics
	reg := prometheus.NewRegistry()
	if r.metrics {
		m = metrics.New("featurecat")
		if err := m.Register(reg); err != nil {
			return err
		}
	}

	format := string(cfg.Format)
	decode := func(name string, src io.Reader) error {
		p := &printer{out: r.out}
		f, err := newFeeder(m.Handler(p, format))
		if err != nil {
			return err
		}
		if r.chunkSize > 0 {
			src = transport.NewChunkReader(src, r.chunkSize)
		}
		n, err := transport.Feed(ctx, m.Feeder(f, format), src)
		glog.V(1).Infof("featurecat: %s: %d bytes, %d features", name, n, p.features)
		r.features += p.features
		return errors.Wrap(err, name)
	}

	if len(files) == 0 {
		err = decode("stdin", os.Stdin)
	}
	for _, name := range files {
		if err = r.decodeFile(name, decode); err != nil {
			break
		}
	}
	if r.metrics {
		r.printMetrics(reg)
	}
	return err
}

func (r *runner) decodeFile(name string, decode func(string, io.Reader) error) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return decode(name, f)
}

func (r *runner) printMetrics(reg *prometheus.Registry) {
	mfs, err := reg.Gather()
	if err != nil {
		glog.Warningf("featurecat: gathering metrics: %v", err)
		return
	}
	var lines []string
	for _, mf := range mfs {
		for _, mm := range mf.GetMetric() {
			var labels []string
			for _, l := range mm.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			v := mm.GetCounter().GetValue()
			if h := mm.GetHistogram(); h != nil {
				v = float64(h.GetSampleCount())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), v))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		color.New(color.Faint).Fprintln(r.out, l)
	}
}
