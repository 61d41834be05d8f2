package transport

import (
	"github.com/andaru/featurestream/stream"
)

// Writer is an io.WriteCloser pushing its input to a stream.Feeder.
// Close finishes the feeder.
type Writer struct {
	dst stream.Feeder
}

// NewWriter returns a new Writer feeding dst.
func NewWriter(dst stream.Feeder) *Writer { return &Writer{dst: dst} }

// Write pushes b to the feeder. All of b is consumed unless an error is
// returned.
func (w *Writer) Write(b []byte) (n int, err error) {
	if err = w.dst.Push(b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Close signals the end of input to the feeder
func (w *Writer) Close() error { return w.dst.Finish() }
