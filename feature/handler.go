package feature

// Handler receives the canonical feature event sequence
type Handler interface {
	OnStart(ctx *Context) error
	OnEnd(ctx *Context) error
	OnFeatureStart(ctx *Context) error
	OnFeatureEnd(ctx *Context) error
	OnObjectStart(ctx *Context) error
	OnObjectEnd(ctx *Context) error
	OnArrayStart(ctx *Context) error
	OnArrayEnd(ctx *Context) error
	OnValue(ctx *Context) error
}

// NopHandler ignores all events. Embed it to implement a subset of Handler.
type NopHandler struct{}

func (NopHandler) OnStart(*Context) error        { return nil }
func (NopHandler) OnEnd(*Context) error          { return nil }
func (NopHandler) OnFeatureStart(*Context) error { return nil }
func (NopHandler) OnFeatureEnd(*Context) error   { return nil }
func (NopHandler) OnObjectStart(*Context) error  { return nil }
func (NopHandler) OnObjectEnd(*Context) error    { return nil }
func (NopHandler) OnArrayStart(*Context) error   { return nil }
func (NopHandler) OnArrayEnd(*Context) error     { return nil }
func (NopHandler) OnValue(*Context) error        { return nil }

// Dispatch calls the method of h corresponding to kind.
func Dispatch(h Handler, kind EventKind, ctx *Context) error {
	switch kind {
	case EventStart:
		return h.OnStart(ctx)
	case EventEnd:
		return h.OnEnd(ctx)
	case EventFeatureStart:
		return h.OnFeatureStart(ctx)
	case EventFeatureEnd:
		return h.OnFeatureEnd(ctx)
	case EventObjectStart:
		return h.OnObjectStart(ctx)
	case EventObjectEnd:
		return h.OnObjectEnd(ctx)
	case EventArrayStart:
		return h.OnArrayStart(ctx)
	case EventArrayEnd:
		return h.OnArrayEnd(ctx)
	case EventValue:
		return h.OnValue(ctx)
	}
	return nil
}

type multi []Handler

// Multi returns a Handler passing each event to every handler in turn,
// stopping at the first error.
func Multi(hs ...Handler) Handler { return multi(hs) }

func (m multi) each(kind EventKind, ctx *Context) error {
	for _, h := range m {
		if err := Dispatch(h, kind, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) OnStart(ctx *Context) error        { return m.each(EventStart, ctx) }
func (m multi) OnEnd(ctx *Context) error          { return m.each(EventEnd, ctx) }
func (m multi) OnFeatureStart(ctx *Context) error { return m.each(EventFeatureStart, ctx) }
func (m multi) OnFeatureEnd(ctx *Context) error   { return m.each(EventFeatureEnd, ctx) }
func (m multi) OnObjectStart(ctx *Context) error  { return m.each(EventObjectStart, ctx) }
func (m multi) OnObjectEnd(ctx *Context) error    { return m.each(EventObjectEnd, ctx) }
func (m multi) OnArrayStart(ctx *Context) error   { return m.each(EventArrayStart, ctx) }
func (m multi) OnArrayEnd(ctx *Context) error     { return m.each(EventArrayEnd, ctx) }
func (m multi) OnValue(ctx *Context) error        { return m.each(EventValue, ctx) }
