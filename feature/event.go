package feature

import (
	"fmt"
	"slices"
	"strings"

	"github.com/andaru/featurestream/geometry"
	"github.com/andaru/featurestream/schema"
)

// EventKind identifies a Handler callback
type EventKind int

const (
	EventStart EventKind = iota
	EventEnd
	EventFeatureStart
	EventFeatureEnd
	EventObjectStart
	EventObjectEnd
	EventArrayStart
	EventArrayEnd
	EventValue
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventFeatureStart:
		return "feature-start"
	case EventFeatureEnd:
		return "feature-end"
	case EventObjectStart:
		return "object-start"
	case EventObjectEnd:
		return "object-end"
	case EventArrayStart:
		return "array-start"
	case EventArrayEnd:
		return "array-end"
	case EventValue:
		return "value"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a snapshot of a callback and the context state it saw
type Event struct {
	Kind         EventKind
	Path         []string
	Indexes      []int
	Value        string
	ValueType    schema.Type
	InGeometry   bool
	GeometryType geometry.Type
	Dimension    int
}

// Snapshot copies the state of ctx relevant to an event of the given kind.
func Snapshot(kind EventKind, ctx *Context) Event {
	e := Event{Kind: kind, Path: ctx.Path(), InGeometry: ctx.InGeometry()}
	if idx := ctx.Indexes(); len(idx) > 0 {
		e.Indexes = slices.Clone(idx)
	}
	if kind == EventValue {
		e.Value = ctx.Value()
		e.ValueType = ctx.ValueType()
	}
	if e.InGeometry {
		e.GeometryType = ctx.GeometryType()
		e.Dimension, _ = ctx.GeometryDimension()
	}
	return e
}

func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if len(e.Path) > 0 {
		b.WriteString(" " + strings.Join(e.Path, "."))
	}
	if len(e.Indexes) > 0 {
		fmt.Fprintf(&b, " %v", e.Indexes)
	}
	if e.InGeometry && e.GeometryType.Valid() {
		fmt.Fprintf(&b, " <%s", e.GeometryType)
		if e.Dimension > 0 {
			fmt.Fprintf(&b, " %dD", e.Dimension)
		}
		b.WriteString(">")
	}
	if e.Kind == EventValue {
		fmt.Fprintf(&b, " %s %q", e.ValueType, e.Value)
	}
	return b.String()
}

// Recorder is a Handler keeping a snapshot of every event
type Recorder struct {
	Events []Event
	// Metadata is captured at OnStart
	Metadata Metadata
}

func (r *Recorder) record(kind EventKind, ctx *Context) error {
	r.Events = append(r.Events, Snapshot(kind, ctx))
	return nil
}

func (r *Recorder) OnEnd(ctx *Context) error          { return r.record(EventEnd, ctx) }
func (r *Recorder) OnFeatureStart(ctx *Context) error { return r.record(EventFeatureStart, ctx) }
func (r *Recorder) OnFeatureEnd(ctx *Context) error   { return r.record(EventFeatureEnd, ctx) }
func (r *Recorder) OnObjectStart(ctx *Context) error  { return r.record(EventObjectStart, ctx) }
func (r *Recorder) OnObjectEnd(ctx *Context) error    { return r.record(EventObjectEnd, ctx) }
func (r *Recorder) OnArrayStart(ctx *Context) error   { return r.record(EventArrayStart, ctx) }
func (r *Recorder) OnArrayEnd(ctx *Context) error     { return r.record(EventArrayEnd, ctx) }
func (r *Recorder) OnValue(ctx *Context) error        { return r.record(EventValue, ctx) }

func (r *Recorder) OnStart(ctx *Context) error {
	r.Metadata = *ctx.Metadata()
	return r.record(EventStart, ctx)
}

// Kinds returns the kinds of the recorded events
func (r *Recorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Strings returns the String form of every recorded event
func (r *Recorder) Strings() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.String()
	}
	return out
}

// Values returns the values of all value events, in order
func (r *Recorder) Values() (out []string) {
	for _, e := range r.Events {
		if e.Kind == EventValue {
			out = append(out, e.Value)
		}
	}
	return out
}
