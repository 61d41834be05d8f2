// Package stream holds the push/drain plumbing shared by the feature decoders.
//
// Input arrives as arbitrary byte chunks. A Source tokenizes what it has
// been fed and answers ErrIncomplete when it needs more bytes; a Pipeline
// runs a Source until then, passing each token to a per-format callback.
package stream

import (
	"io"

	"github.com/andaru/featurestream/ferr"
	"github.com/pkg/errors"
)

// ErrIncomplete is returned by a Source that needs more input to produce
// the next token.
var ErrIncomplete = errors.New("incomplete input")

// Feeder accepts a document as a sequence of byte chunks.
type Feeder interface {
	// Push feeds chunk and processes everything decodable so far.
	Push(chunk []byte) error
	// Finish signals end of input and processes the remainder.
	Finish() error
}

// Source is a chunk-fed tokenizer.
type Source[T any] interface {
	// Feed appends input. The Source does not retain chunk.
	Feed(chunk []byte) error
	// EndOfInput signals that no more input follows.
	EndOfInput()
	// Next returns the next token, ErrIncomplete, or io.EOF once all
	// input has been tokenized.
	Next() (T, error)
}

// Drain calls handle for each token next produces until next reports
// ErrIncomplete or io.EOF.
func Drain[T any](next func() (T, error), handle func(T) error) error {
	for {
		tok, err := next()
		switch {
		case err == nil:
		case errors.Is(err, ErrIncomplete), err == io.EOF:
			return nil
		default:
			return err
		}
		if err := handle(tok); err != nil {
			return err
		}
	}
}

// Pipeline is a Feeder running a Source through a token callback.
//
// The first error is sticky: it is returned by every later call.
type Pipeline[T any] struct {
	format   string
	src      Source[T]
	handle   func(T) error
	finished bool
	err      error
}

// NewPipeline returns a Pipeline for the named format.
func NewPipeline[T any](format string, src Source[T], handle func(T) error) *Pipeline[T] {
	return &Pipeline[T]{format: format, src: src, handle: handle}
}

func (p *Pipeline[T]) Push(chunk []byte) error {
	if p.err != nil {
		return p.err
	}
	if p.finished {
		return ferr.ContractViolation(ferr.WithFormat(p.format), ferr.WithMessage("push after finish"))
	}
	if err := p.src.Feed(chunk); err != nil {
		return p.fail(err)
	}
	return p.fail(Drain(p.src.Next, p.handle))
}

func (p *Pipeline[T]) Finish() error {
	if p.err != nil {
		return p.err
	}
	if p.finished {
		return ferr.ContractViolation(ferr.WithFormat(p.format), ferr.WithMessage("finish called twice"))
	}
	p.finished = true
	p.src.EndOfInput()
	return p.fail(Drain(p.src.Next, p.handle))
}

func (p *Pipeline[T]) fail(err error) error {
	if err != nil {
		p.err = err
	}
	return err
}

// Err returns the error that stopped the pipeline, if any
func (p *Pipeline[T]) Err() error { return p.err }

// FeedAll pushes doc to f in chunks of size n, then finishes.
// A size below one pushes doc whole.
func FeedAll(f Feeder, doc []byte, n int) error {
	if n < 1 {
		n = len(doc)
	}
	for len(doc) > 0 {
		c := min(n, len(doc))
		if err := f.Push(doc[:c]); err != nil {
			return err
		}
		doc = doc[c:]
	}
	return f.Finish()
}
