package feature

import (
	"github.com/andaru/featurestream/ferr"
)

// Validator is a Handler checking the nesting contract before passing
// events on. Violations are returned as ferr ContractViolation errors.
type Validator struct {
	next    Handler
	started bool
	ended   bool
	feature bool
	open    []EventKind
}

// NewValidator wraps next, which may be nil to only check.
func NewValidator(next Handler) *Validator {
	if next == nil {
		next = NopHandler{}
	}
	return &Validator{next: next}
}

func violation(format string, args ...interface{}) error {
	return ferr.ContractViolation(ferr.WithMessagef(format, args...))
}

func (v *Validator) live(kind EventKind) error {
	switch {
	case v.ended:
		return violation("%s after end", kind)
	case !v.started:
		return violation("%s before start", kind)
	}
	return nil
}

func (v *Validator) inFeature(kind EventKind) error {
	if err := v.live(kind); err != nil {
		return err
	}
	if !v.feature {
		return violation("%s outside of a feature", kind)
	}
	return nil
}

func (v *Validator) OnStart(ctx *Context) error {
	if v.started {
		return violation("%s repeated", EventStart)
	}
	v.started = true
	return v.next.OnStart(ctx)
}

func (v *Validator) OnEnd(ctx *Context) error {
	if err := v.live(EventEnd); err != nil {
		return err
	}
	if v.feature {
		return violation("%s inside a feature", EventEnd)
	}
	v.ended = true
	return v.next.OnEnd(ctx)
}

func (v *Validator) OnFeatureStart(ctx *Context) error {
	if err := v.live(EventFeatureStart); err != nil {
		return err
	}
	if v.feature {
		return violation("nested %s", EventFeatureStart)
	}
	v.feature = true
	return v.next.OnFeatureStart(ctx)
}

func (v *Validator) OnFeatureEnd(ctx *Context) error {
	if err := v.inFeature(EventFeatureEnd); err != nil {
		return err
	}
	if len(v.open) > 0 {
		return violation("%s with %d open structures", EventFeatureEnd, len(v.open))
	}
	v.feature = false
	return v.next.OnFeatureEnd(ctx)
}

func (v *Validator) push(kind EventKind, ctx *Context, fn func(*Context) error) error {
	if err := v.inFeature(kind); err != nil {
		return err
	}
	v.open = append(v.open, kind)
	return fn(ctx)
}

func (v *Validator) pop(kind, opener EventKind, ctx *Context, fn func(*Context) error) error {
	if err := v.inFeature(kind); err != nil {
		return err
	}
	if len(v.open) == 0 || v.open[len(v.open)-1] != opener {
		return violation("unbalanced %s", kind)
	}
	v.open = v.open[:len(v.open)-1]
	return fn(ctx)
}

func (v *Validator) OnObjectStart(ctx *Context) error {
	return v.push(EventObjectStart, ctx, v.next.OnObjectStart)
}

func (v *Validator) OnObjectEnd(ctx *Context) error {
	return v.pop(EventObjectEnd, EventObjectStart, ctx, v.next.OnObjectEnd)
}

func (v *Validator) OnArrayStart(ctx *Context) error {
	return v.push(EventArrayStart, ctx, v.next.OnArrayStart)
}

func (v *Validator) OnArrayEnd(ctx *Context) error {
	return v.pop(EventArrayEnd, EventArrayStart, ctx, v.next.OnArrayEnd)
}

func (v *Validator) OnValue(ctx *Context) error {
	if err := v.inFeature(EventValue); err != nil {
		return err
	}
	return v.next.OnValue(ctx)
}

// Complete returns an error unless a whole document has been seen
func (v *Validator) Complete() error {
	if !v.ended {
		return violation("document did not end")
	}
	return nil
}
