// Package metrics exports Prometheus counters for decoders, by wrapping
// their input side (stream.Feeder) and their output side (feature.Handler).
package metrics

import (
	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/ferr"
	"github.com/andaru/featurestream/stream"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "decoder"

// Metrics holds the decoder collectors. A nil *Metrics records nothing.
type Metrics struct {
	bytes    *prometheus.CounterVec   // by format
	chunks   *prometheus.HistogramVec // chunk size, by format
	features *prometheus.CounterVec   // by format
	events   *prometheus.CounterVec   // by format and event kind
	errors   *prometheus.CounterVec   // by format and error kind
}

// New returns unregistered collectors in namespace
func New(namespace string) *Metrics {
	return &Metrics{
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bytes_total",
			Help:      "Total number of input bytes pushed to decoders",
		}, []string{"format"}),

		chunks: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chunk_bytes",
			Help:      "Size of the input chunks pushed to decoders",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		}, []string{"format"}),

		features: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "features_total",
			Help:      "Total number of features decoded",
		}, []string{"format"}),

		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_total",
			Help:      "Total number of events delivered to handlers",
		}, []string{"format", "event"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of decoding failures",
		}, []string{"format", "kind"}),
	}
}

// Register registers all collectors with r
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.bytes, m.chunks, m.features, m.events, m.errors} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) recordError(format string, err error) {
	kind := "other"
	if k, ok := ferr.KindOf(err); ok {
		kind = k.String()
	}
	m.errors.WithLabelValues(format, kind).Inc()
}

type feeder struct {
	f      stream.Feeder
	m      *Metrics
	format string
	failed bool
}

// Feeder returns f counting the bytes and chunks pushed and the first
// error returned, labelled with format.
func (m *Metrics) Feeder(f stream.Feeder, format string) stream.Feeder {
	if m == nil {
		return f
	}
	return &feeder{f: f, m: m, format: format}
}

func (f *feeder) Push(chunk []byte) error {
	f.m.bytes.WithLabelValues(f.format).Add(float64(len(chunk)))
	f.m.chunks.WithLabelValues(f.format).Observe(float64(len(chunk)))
	return f.check(f.f.Push(chunk))
}

func (f *feeder) Finish() error { return f.check(f.f.Finish()) }

// check counts the first error only, decoder errors are sticky
func (f *feeder) check(err error) error {
	if err != nil && !f.failed {
		f.failed = true
		f.m.recordError(f.format, err)
	}
	return err
}

type handler struct {
	next   feature.Handler
	m      *Metrics
	format string
}

// Handler returns h counting the events it receives, labelled with format
func (m *Metrics) Handler(h feature.Handler, format string) feature.Handler {
	if m == nil {
		return h
	}
	return &handler{next: h, m: m, format: format}
}

func (h *handler) count(kind feature.EventKind, ctx *feature.Context) error {
	h.m.events.WithLabelValues(h.format, kind.String()).Inc()
	if kind == feature.EventFeatureStart {
		h.m.features.WithLabelValues(h.format).Inc()
	}
	return feature.Dispatch(h.next, kind, ctx)
}

func (h *handler) OnStart(ctx *feature.Context) error        { return h.count(feature.EventStart, ctx) }
func (h *handler) OnEnd(ctx *feature.Context) error          { return h.count(feature.EventEnd, ctx) }
func (h *handler) OnFeatureStart(ctx *feature.Context) error { return h.count(feature.EventFeatureStart, ctx) }
func (h *handler) OnFeatureEnd(ctx *feature.Context) error   { return h.count(feature.EventFeatureEnd, ctx) }
func (h *handler) OnObjectStart(ctx *feature.Context) error  { return h.count(feature.EventObjectStart, ctx) }
func (h *handler) OnObjectEnd(ctx *feature.Context) error    { return h.count(feature.EventObjectEnd, ctx) }
func (h *handler) OnArrayStart(ctx *feature.Context) error   { return h.count(feature.EventArrayStart, ctx) }
func (h *handler) OnArrayEnd(ctx *feature.Context) error     { return h.count(feature.EventArrayEnd, ctx) }
func (h *handler) OnValue(ctx *feature.Context) error        { return h.count(feature.EventValue, ctx) }
