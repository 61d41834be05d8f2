package main

import (
	"fmt"
	"io"

	"github.com/andaru/featurestream/feature"
	"github.com/fatih/color"
)

var (
	documentColor = color.New(color.FgYellow)
	featureColor  = color.New(color.FgGreen, color.Bold)
	nestingColor  = color.New(color.FgCyan)
	valueColor    = color.New(color.Reset)
)

// printer is a feature.Handler printing one line per event
type printer struct {
	out      io.Writer
	features int
}

func (p *printer) print(kind feature.EventKind, ctx *feature.Context) error {
	c := valueColor
	switch kind {
	case feature.EventStart, feature.EventEnd:
		c = documentColor
	case feature.EventFeatureStart, feature.EventFeatureEnd:
		c = featureColor
	case feature.EventObjectStart, feature.EventObjectEnd, feature.EventArrayStart, feature.EventArrayEnd:
		c = nestingColor
	}
	line := feature.Snapshot(kind, ctx).String()
	if kind == feature.EventStart {
		line += metadata(ctx.Metadata())
	}
	_, err := c.Fprintln(p.out, line)
	return err
}

func metadata(md *feature.Metadata) (s string) {
	if md.SingleFeature {
		s += " single"
	}
	if md.NumberReturned != nil {
		s += fmt.Sprintf(" returned=%d", *md.NumberReturned)
	}
	if md.NumberMatched != nil {
		s += fmt.Sprintf(" matched=%d", *md.NumberMatched)
	}
	return s
}

func (p *printer) OnFeatureStart(ctx *feature.Context) error {
	p.features++
	return p.print(feature.EventFeatureStart, ctx)
}

func (p *printer) OnStart(ctx *feature.Context) error       { return p.print(feature.EventStart, ctx) }
func (p *printer) OnEnd(ctx *feature.Context) error         { return p.print(feature.EventEnd, ctx) }
func (p *printer) OnFeatureEnd(ctx *feature.Context) error  { return p.print(feature.EventFeatureEnd, ctx) }
func (p *printer) OnObjectStart(ctx *feature.Context) error { return p.print(feature.EventObjectStart, ctx) }
func (p *printer) OnObjectEnd(ctx *feature.Context) error   { return p.print(feature.EventObjectEnd, ctx) }
func (p *printer) OnArrayStart(ctx *feature.Context) error  { return p.print(feature.EventArrayStart, ctx) }
func (p *printer) OnArrayEnd(ctx *feature.Context) error    { return p.print(feature.EventArrayEnd, ctx) }
func (p *printer) OnValue(ctx *feature.Context) error       { return p.print(feature.EventValue, ctx) }
